package cli

import (
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/client/services"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/spf13/cobra"
)

func (a *App) uploadCommand() *cobra.Command {
	var (
		form      services.UploadForm
		workspace string
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video and schedule it",
		Long: "Upload a video and schedule it for publication.\n\n" +
			"Date and time are read in the local time zone. Missing title, date\n" +
			"and time are prompted for.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			form.FilePath = args[0]

			if err := a.completeForm(&form); err != nil {
				return err
			}

			wctx, cancel := a.requestContext(ctx)
			ws, err := a.workspace(wctx, workspace)
			cancel()
			if err != nil {
				return err
			}
			form.WorkspaceID = ws.ID

			fmt.Fprintln(a.errOut, mutedStyle.Render("Uploading "+form.FilePath+"..."))
			item, err := a.deps.Uploads.Schedule(ctx, form)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, successStyle.Render("Scheduled "+item.Title))
			renderItem(a.out, *item, a.loc)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&form.Title, "title", "t", "", "video title")
	f.StringVarP(&form.Description, "description", "d", "", "video description")
	f.StringVar(&form.Date, "date", "", "publication date (YYYY-MM-DD)")
	f.StringVar(&form.Time, "time", "", "publication time (HH:MM)")
	f.StringVarP(&workspace, "workspace", "w", "", "workspace name or id")
	f.BoolVar(&form.Targets.YouTube, string(models.PlatformYouTube), false, "publish to YouTube")
	return cmd
}

// completeForm prompts for the fields missing from the command line. The
// description is only asked for together with the title.
func (a *App) completeForm(form *services.UploadForm) error {
	var err error
	if form.Title == "" {
		if form.Title, err = GetSimpleText(a.in, "Title:", a.out); err != nil {
			return err
		}
		if form.Description == "" {
			if form.Description, err = GetMultiline(a.in, "Description:", a.out); err != nil {
				return err
			}
		}
	}
	if form.Date == "" {
		if form.Date, err = GetSimpleText(a.in, "Date (YYYY-MM-DD):", a.out); err != nil {
			return err
		}
	}
	if form.Time == "" {
		if form.Time, err = GetSimpleText(a.in, "Time (HH:MM):", a.out); err != nil {
			return err
		}
	}
	return nil
}
