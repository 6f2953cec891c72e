package cli

import (
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/client/config"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/spf13/cobra"
)

// Command builds the command tree bound to the app.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:               "postplanner",
		Short:             "Schedule videos for your social channels",
		Version:           a.version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "path to config file (JSON or YAML)")
	pf.StringVarP(&a.flags.addr, "addr", "a", "", "server endpoint address")
	pf.StringVar(&a.flags.db, "db", "", "local state database file")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.workspacesCommand(),
		a.workspaceCommand(),
		a.upcomingCommand(),
		a.historyCommand(),
		a.deleteCommand(),
		a.uploadCommand(),
		a.connectCommand(),
		a.disconnectCommand(),
		a.statusCommand(),
	)
	return root
}

// setup loads the configuration, applies the flags given on the command
// line and builds the dependencies.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	fl := cmd.Flags()
	if fl.Changed("addr") {
		cfg.ServerEndpointAddr = a.flags.addr
	}
	if fl.Changed("db") {
		cfg.DatabasePath = a.flags.db
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}

	a.cfg = cfg
	a.logger = logging.New(a.errOut, cfg.LogLevel, false).With("app", "cli")

	deps, err := a.newDeps(cmd.Context(), cfg, a.logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	a.deps = deps
	return nil
}
