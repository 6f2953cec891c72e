// Package grpc exposes the server services over the Scheduler gRPC API.
package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	sm "github.com/dmitrijs2005/postplanner/internal/server/models"
	"github.com/dmitrijs2005/postplanner/internal/server/services"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*sm.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Identity(ctx context.Context, userID string) (*models.Identity, error)
}

type WorkspaceService interface {
	Create(ctx context.Context, userID, name string) (*models.Workspace, error)
	List(ctx context.Context, userID string) ([]models.Workspace, error)
	Get(ctx context.Context, userID, id string) (*models.Workspace, error)
}

type ScheduleService interface {
	List(ctx context.Context, userID string, q schedule.Query) ([]models.ScheduledItem, error)
	Create(ctx context.Context, userID string, item *models.ScheduledItem) (*models.ScheduledItem, error)
	Delete(ctx context.Context, userID, id string) error
}

type ConnectionService interface {
	Count(ctx context.Context, userID string, scope schedule.ConnectionScope) (int64, error)
	Disconnect(ctx context.Context, userID string, scope schedule.ConnectionScope) error
	AuthURL(ctx context.Context, userID string, scope schedule.ConnectionScope) (string, error)
}

type MediaService interface {
	CreateUploadTicket(ctx context.Context, userID, filename, contentType string) (*services.UploadTicket, error)
}

// Subscriber opens change subscriptions; *changes.Broker implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, scope schedule.Scope) schedule.Subscription
}

// Services bundles the collaborators of GRPCServer.
type Services struct {
	Users       UserService
	Workspaces  WorkspaceService
	Schedule    ScheduleService
	Connections ConnectionService
	Media       MediaService
	Changes     Subscriber
}

type GRPCServer struct {
	api.UnimplementedSchedulerServer
	address   string
	svc       Services
	logger    logging.Logger
	jwtSecret []byte
	validate  *validator.Validate
	health    *health.Server

	// stopping is closed when shutdown begins so Watch streams return
	// before GracefulStop waits on them.
	stopping chan struct{}
	stopOnce sync.Once
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		svc:       svc,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
		validate:  common.NewValidator(),
		health:    health.NewServer(),
		stopping:  make(chan struct{}),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	api.RegisterSchedulerServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		s.stopOnce.Do(func() { close(s.stopping) })
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
