package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/postplanner/internal/client/cli"
)

// Set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cli.WithVersion(buildVersion))
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		app.Report(err)
		stop()
		os.Exit(1)
	}
}
