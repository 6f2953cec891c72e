// Package server wires the postplanner server: database, services, change
// propagation, the gRPC endpoint and maintenance jobs. It handles graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/server/changes"
	"github.com/dmitrijs2005/postplanner/internal/server/config"
	"github.com/dmitrijs2005/postplanner/internal/server/jobs"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postplanner/internal/server/services"

	gs "github.com/dmitrijs2005/postplanner/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	broker   *changes.Broker
	listener *changes.Listener
	grpc     *gs.GRPCServer
	jobs     *jobs.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, true)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, broker: changes.NewBroker(0, logger)}

	var notifier changes.Notifier
	switch c.ChangeMode {
	case config.ChangeModeLocal:
		notifier = changes.BrokerNotifier{Broker: app.broker}
	case config.ChangeModeListen, "":
		notifier = changes.Nop{}
		app.listener = changes.NewListener(c.DatabaseDSN, app.broker, logger)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unknown change mode %q", c.ChangeMode)
	}

	media, err := services.NewMediaService(c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Users:       services.NewUserService(db, rm, c),
		Workspaces:  services.NewWorkspaceService(db, rm),
		Schedule:    services.NewScheduleService(db, rm, notifier),
		Connections: services.NewConnectionService(db, rm, notifier, c),
		Media:       media,
		Changes:     app.broker,
	}, c.SecretKey)

	app.jobs = jobs.NewScheduler(logger)
	cleanup := jobs.RefreshTokenCleanup(rm.RefreshTokens(db), nil, logger)
	if err := app.jobs.Add(jobs.RefreshTokenCleanupName, c.CleanupSchedule, cleanup); err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a component fails, then releases
// every resource.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.listener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = app.listener.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.jobs.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.broker.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
