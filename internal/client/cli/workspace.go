package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/spf13/cobra"
)

var (
	errNoWorkspaces  = errors.New("no workspaces yet")
	errPickWorkspace = errors.New("you have several workspaces; choose one with --workspace")
)

func (a *App) workspacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"ws"},
		Short:   "List workspaces",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			selected, all, err := a.deps.Workspaces.Home(ctx)
			if err != nil {
				return err
			}
			renderWorkspaces(a.out, selected, all)
			return nil
		},
	}
}

func (a *App) workspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			ws, err := a.deps.Workspaces.Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("Created workspace "+ws.Name), mutedStyle.Render(ws.ID))
			return nil
		},
	})
	return cmd
}

// workspace resolves the --workspace flag. Without it the only workspace
// of the user is used.
func (a *App) workspace(ctx context.Context, ref string) (*models.Workspace, error) {
	if ref != "" {
		return a.deps.Workspaces.Resolve(ctx, ref)
	}

	selected, all, err := a.deps.Workspaces.Home(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case selected != nil:
		return selected, nil
	case len(all) == 0:
		return nil, errNoWorkspaces
	default:
		return nil, errPickWorkspace
	}
}
