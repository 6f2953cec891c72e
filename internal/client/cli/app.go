package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/client/client"
	"github.com/dmitrijs2005/postplanner/internal/client/config"
	"github.com/dmitrijs2005/postplanner/internal/client/services"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

// Deps are the collaborators a command runs against.
type Deps struct {
	Auth        services.AuthService
	Workspaces  services.WorkspaceService
	Uploads     services.UploadService
	Connections services.ConnectionService
	Store       schedule.RecordStore
	Close       func() error
}

// DepsFactory builds Deps for a loaded configuration.
type DepsFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Deps, error)

type App struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	loc    *time.Location
	now    func() time.Time

	newDeps DepsFactory
	version string

	flags  globalFlags
	cfg    *config.Config
	logger logging.Logger
	deps   *Deps
}

type globalFlags struct {
	configPath string
	addr       string
	db         string
	logLevel   string
}

type Option func(*App)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
		a.errOut = errOut
	}
}

// WithDeps replaces the production wiring.
func WithDeps(f DepsFactory) Option {
	return func(a *App) { a.newDeps = f }
}

// WithLocation sets the zone used to read form dates and print times.
func WithLocation(loc *time.Location) Option {
	return func(a *App) { a.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

func NewApp(opts ...Option) *App {
	a := &App{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
		loc:     time.Local,
		now:     time.Now,
		newDeps: buildDeps,
		version: "dev",
		logger:  logging.Nop{},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// buildDeps opens the local state database, dials the server and wires the
// services on top of the client.
func buildDeps(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Deps, error) {
	path, err := cfg.DatabaseFile()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := services.NewAuthService(c, repos.Metadata)
	return &Deps{
		Auth:        auth,
		Workspaces:  services.NewWorkspaceService(c),
		Uploads:     services.NewUploadService(c, &http.Client{}, time.Local),
		Connections: services.NewConnectionService(c, auth, repos.Metadata),
		Store:       c,
		Close: func() error {
			return errors.Join(c.Close(), db.Close())
		},
	}, nil
}

// Run executes the command line and releases the dependencies.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func (a *App) teardown() {
	if a.deps == nil || a.deps.Close == nil {
		return
	}
	if err := a.deps.Close(); err != nil {
		a.logger.Warn(context.Background(), "close failed", "error", err)
	}
	a.deps = nil
}

// requestContext bounds a single round of calls by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg == nil || a.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

// Report prints err for the user, with a hint for the errors that have an
// obvious next step.
func (a *App) Report(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(a.errOut, errorStyle.Render("Error: "+err.Error()))

	switch {
	case errors.Is(err, schedule.ErrUnauthenticated):
		fmt.Fprintln(a.errOut, infoStyle.Render("Run `postplanner login` to sign in."))
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.errOut, infoStyle.Render("Check that the server is running and --addr is correct."))
	case errors.Is(err, errNoWorkspaces):
		fmt.Fprintln(a.errOut, infoStyle.Render("Run `postplanner workspace create <name>` first."))
	}
}
