package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/spf13/cobra"
)

func (a *App) upcomingCommand() *cobra.Command {
	var (
		workspace string
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show what is scheduled from today on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workspace == "" {
				return a.showSchedule(cmd.Context(), schedule.Options{Kind: schedule.KindUpcoming}, "Upcoming", watch)
			}

			ctx, cancel := a.requestContext(cmd.Context())
			ws, err := a.deps.Workspaces.Resolve(ctx, workspace)
			cancel()
			if err != nil {
				return err
			}
			return a.showSchedule(cmd.Context(), schedule.Options{Kind: schedule.KindWorkspace, WorkspaceID: ws.ID}, ws.Name, watch)
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace name or id")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep the listing live until interrupted")
	return cmd
}

func (a *App) historyCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what was scheduled before today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showSchedule(cmd.Context(), schedule.Options{Kind: schedule.KindHistory}, "History", watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep the listing live until interrupted")
	return cmd
}

func (a *App) newView(opts schedule.Options) *schedule.View {
	opts.Now = a.now
	opts.Logger = a.logger
	return schedule.NewView(a.deps.Store, a.deps.Auth, opts)
}

func (a *App) showSchedule(ctx context.Context, opts schedule.Options, title string, watch bool) error {
	opts.OneShot = !watch
	view := a.newView(opts)

	var mu sync.Mutex
	render := func(g schedule.GroupedSchedule) {
		mu.Lock()
		defer mu.Unlock()
		heading := title
		if opts.Kind == schedule.KindWorkspace {
			heading = fmt.Sprintf("%s (%s: %s)", title, models.PlatformYouTube, connectionLabel(view.Connected()))
		}
		renderSchedule(a.out, heading, g, a.loc)
	}

	if !watch {
		reqCtx, cancel := a.requestContext(ctx)
		defer cancel()

		if err := view.Open(reqCtx); err != nil {
			return err
		}
		defer view.Close()

		render(view.Grouped())
		return nil
	}

	view.OnChange(render)
	if err := view.Open(ctx); err != nil {
		return err
	}
	defer view.Close()

	fmt.Fprintln(a.errOut, mutedStyle.Render("Watching for changes, press Ctrl+C to stop."))
	<-ctx.Done()
	return nil
}

func (a *App) deleteCommand() *cobra.Command {
	var workspace string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a scheduled item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			kinds := []schedule.Options{{Kind: schedule.KindUpcoming}, {Kind: schedule.KindHistory}}
			if workspace != "" {
				ws, err := a.deps.Workspaces.Resolve(ctx, workspace)
				if err != nil {
					return err
				}
				kinds = []schedule.Options{{Kind: schedule.KindWorkspace, WorkspaceID: ws.ID}}
			}

			for _, opts := range kinds {
				item, err := a.deleteFrom(ctx, opts, args[0])
				if errors.Is(err, schedule.ErrItemNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, successStyle.Render("Deleted "+item.Title))
				return nil
			}
			return fmt.Errorf("item %s not found", args[0])
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace name or id")
	return cmd
}

// deleteFrom opens a view of the given kind and deletes id through it.
func (a *App) deleteFrom(ctx context.Context, opts schedule.Options, id string) (*models.ScheduledItem, error) {
	opts.OneShot = true
	view := a.newView(opts)
	if err := view.Open(ctx); err != nil {
		return nil, err
	}
	defer view.Close()

	var item *models.ScheduledItem
	for _, it := range view.Items() {
		if it.ID == id {
			item = &it
			break
		}
	}

	if err := view.Delete(ctx, id); err != nil {
		if !errors.Is(err, schedule.ErrItemNotFound) {
			fmt.Fprintln(a.errOut, warnStyle.Render("Could not delete the item, it was kept in your schedule."))
		}
		return nil, err
	}
	return item, nil
}
