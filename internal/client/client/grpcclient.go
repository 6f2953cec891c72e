package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenHook is called whenever the client obtains a new token pair, after
// Login and after a transparent refresh. Empty strings mean the session
// ended.
type TokenHook func(ctx context.Context, accessToken, refreshToken string) error

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.SchedulerClient
	health      healthpb.HealthClient
	logger      logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     TokenHook

	// serializes refreshes so concurrent expired calls trade the refresh
	// token once
	refreshMu sync.Mutex
}

// NewGRPCClient dials endpointURL without transport security. Extra dial
// options are appended after the client's own.
func NewGRPCClient(endpointURL string, logger logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	c := &GRPCClient{endpointURL: endpointURL, logger: logger.With("module", "grpcclient")}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewSchedulerClient(conn)
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// SetTokens installs a previously persisted token pair.
func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = accessToken, refreshToken
	s.mu.Unlock()
}

// Tokens returns the current token pair.
func (s *GRPCClient) Tokens() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// OnTokens registers the persistence hook.
func (s *GRPCClient) OnTokens(fn TokenHook) {
	s.mu.Lock()
	s.onTokens = fn
	s.mu.Unlock()
}

func (s *GRPCClient) storeTokens(ctx context.Context, accessToken, refreshToken string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = accessToken, refreshToken
	hook := s.onTokens
	s.mu.Unlock()

	if hook == nil {
		return
	}
	if err := hook(ctx, accessToken, refreshToken); err != nil {
		s.logger.Warn(ctx, "persisting tokens failed", "error", err)
	}
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

var errNoRefreshToken = errors.New("no refresh token")

// refresh trades the refresh token for a new pair unless another call
// already did so since used was sent.
func (s *GRPCClient) refresh(ctx context.Context, used string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refreshToken := s.Tokens()
	if access != used {
		return access, nil
	}
	if refreshToken == "" {
		return "", errNoRefreshToken
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	s.storeTokens(ctx, resp.AccessToken, resp.RefreshToken)
	s.logger.Debug(ctx, "access token refreshed")
	return resp.AccessToken, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if api.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	token, _ := s.Tokens()
	err := invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	fresh, rerr := s.refresh(ctx, token)
	if rerr != nil {
		if errors.Is(rerr, errNoRefreshToken) {
			return err
		}
		return rerr
	}

	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	token, _ := s.Tokens()
	return streamer(withAccessToken(ctx, token), desc, cc, method, opts...)
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return mapError(err)
	}
	s.storeTokens(ctx, resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the refresh token on the server and forgets the session
// locally. The local session is dropped even when the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refreshToken := s.Tokens()
	var err error
	if refreshToken != "" {
		_, err = s.client.Logout(ctx, &api.LogoutRequest{RefreshToken: refreshToken})
	}
	s.storeTokens(ctx, "", "")
	return mapError(err)
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*models.Identity, error) {
	resp, err := s.client.WhoAmI(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Identity, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Healthy asks the standard health service whether the Scheduler service
// is serving.
func (s *GRPCClient) Healthy(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

// AuthURL returns the platform authorization page for the workspace.
func (s *GRPCClient) AuthURL(ctx context.Context, workspaceID string, platform models.Platform) (string, error) {
	resp, err := s.client.AuthURL(ctx, &api.ConnectionRequest{WorkspaceID: workspaceID, Platform: platform})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

// CreateUploadTicket asks the server where to upload a media file.
func (s *GRPCClient) CreateUploadTicket(ctx context.Context, filename, contentType string) (*api.UploadTicketResponse, error) {
	resp, err := s.client.CreateUploadTicket(ctx, &api.UploadTicketRequest{Filename: filename, ContentType: contentType})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}
