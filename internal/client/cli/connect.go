package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/spf13/cobra"
)

func parsePlatform(s string) (models.Platform, error) {
	p := models.Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unsupported platform %q", common.ErrorValidation, s)
	}
	return p, nil
}

func (a *App) connectCommand() *cobra.Command {
	var workspace, platform string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Link a platform account to a workspace",
		Long: "Open the platform authorization page in a browser. When the browser\n" +
			"flow is done, run `postplanner connect complete`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parsePlatform(platform)
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			ws, err := a.workspace(ctx, workspace)
			if err != nil {
				return err
			}

			res, err := a.deps.Connections.Connect(ctx, ws.ID, p)
			if err != nil {
				return err
			}
			if res.Opened {
				fmt.Fprintln(a.out, infoStyle.Render("Continue in your browser to connect "+ws.Name+"."))
			} else {
				fmt.Fprintln(a.out, warnStyle.Render("Could not open a browser. Visit this URL to continue:"))
				fmt.Fprintln(a.out, res.URL)
			}
			fmt.Fprintln(a.out, mutedStyle.Render("Then run `postplanner connect complete`."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace name or id")
	cmd.Flags().StringVarP(&platform, "platform", "p", string(models.PlatformYouTube), "platform to connect")

	cmd.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Check the result of a started connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			res, err := a.deps.Connections.Complete(ctx)
			if err != nil {
				return err
			}
			if !res.Connected {
				return fmt.Errorf("%s is still not connected; try `postplanner connect` again", res.Platform)
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Connected %s.", res.Platform)))
			return nil
		},
	})
	return cmd
}

func (a *App) disconnectCommand() *cobra.Command {
	var workspace, platform string
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Unlink a platform account from a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parsePlatform(platform)
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			ws, err := a.workspace(ctx, workspace)
			if err != nil {
				return err
			}
			if err := a.deps.Connections.Disconnect(ctx, ws.ID, p); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Disconnected %s from %s.", p, ws.Name)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace name or id")
	cmd.Flags().StringVarP(&platform, "platform", "p", string(models.PlatformYouTube), "platform to disconnect")
	return cmd
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, session and connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			fmt.Fprintln(a.out, titleStyle.Render("Status"))

			if err := a.deps.Auth.Ping(ctx); err != nil {
				fmt.Fprintf(a.out, "server   %s\n", errorStyle.Render("unreachable"))
				return err
			}
			fmt.Fprintf(a.out, "server   %s %s\n", successStyle.Render("ok"), mutedStyle.Render(a.cfg.ServerEndpointAddr))

			user, err := a.deps.Auth.CurrentUser(ctx)
			if errors.Is(err, schedule.ErrUnauthenticated) {
				fmt.Fprintf(a.out, "session  %s\n", warnStyle.Render("not signed in"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "session  %s\n", user.Email)

			all, err := a.deps.Workspaces.List(ctx)
			if err != nil {
				return err
			}
			for _, ws := range all {
				ok, err := a.deps.Connections.Status(ctx, ws.ID, models.PlatformYouTube)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%-8s %s %s\n", ws.Name, models.PlatformYouTube, connectionLabel(ok))
			}
			return nil
		},
	}
}
