package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/pkg/browser"
)

// ErrNoPendingConnection is returned by Complete when no connection was
// started on this machine.
var ErrNoPendingConnection = errors.New("no connection in progress")

var openBrowser = browser.OpenURL

// ConnectResult describes a started authorization handoff.
type ConnectResult struct {
	URL string
	// Opened is false when the browser could not be launched and the user
	// has to visit URL manually.
	Opened bool
}

// CompleteResult is the outcome of reconciling a finished handoff.
type CompleteResult struct {
	WorkspaceID string
	Platform    models.Platform
	Connected   bool
}

type ConnectionService interface {
	// Connect obtains the platform authorization URL, remembers the
	// workspace being connected and opens the URL in a browser.
	Connect(ctx context.Context, workspaceID string, platform models.Platform) (*ConnectResult, error)
	// Complete consumes the pending marker left by Connect and reports
	// whether the connection now exists.
	Complete(ctx context.Context) (*CompleteResult, error)
	Disconnect(ctx context.Context, workspaceID string, platform models.Platform) error
	Status(ctx context.Context, workspaceID string, platform models.Platform) (bool, error)
}

type connectionService struct {
	client  ConnectionClient
	session schedule.SessionProvider
	meta    metadata.Repository
}

func NewConnectionService(c ConnectionClient, session schedule.SessionProvider, meta metadata.Repository) ConnectionService {
	return &connectionService{client: c, session: session, meta: meta}
}

func (s *connectionService) scope(ctx context.Context, workspaceID string, platform models.Platform) (schedule.ConnectionScope, error) {
	if platform == "" {
		platform = models.PlatformYouTube
	}
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return schedule.ConnectionScope{}, err
	}
	return schedule.ConnectionScope{UserID: user.UserID, WorkspaceID: workspaceID, Platform: platform}, nil
}

func (s *connectionService) Connect(ctx context.Context, workspaceID string, platform models.Platform) (*ConnectResult, error) {
	if platform == "" {
		platform = models.PlatformYouTube
	}

	url, err := s.client.AuthURL(ctx, workspaceID, platform)
	if err != nil {
		return nil, fmt.Errorf("authorization url: %w", err)
	}

	if err := s.meta.Set(ctx, metadata.KeyPendingWorkspace, []byte(workspaceID)); err != nil {
		return nil, err
	}
	if err := s.meta.Set(ctx, metadata.KeyPendingPlatform, []byte(platform)); err != nil {
		return nil, err
	}

	res := &ConnectResult{URL: url, Opened: true}
	if err := openBrowser(url); err != nil {
		res.Opened = false
	}
	return res, nil
}

func (s *connectionService) Complete(ctx context.Context) (*CompleteResult, error) {
	workspaceID, err := metadata.GetString(ctx, s.meta, metadata.KeyPendingWorkspace)
	if err != nil {
		return nil, err
	}
	if workspaceID == "" {
		return nil, ErrNoPendingConnection
	}
	p, err := metadata.GetString(ctx, s.meta, metadata.KeyPendingPlatform)
	if err != nil {
		return nil, err
	}
	platform := models.Platform(p)
	if platform == "" {
		platform = models.PlatformYouTube
	}

	connected, err := s.Status(ctx, workspaceID, platform)
	if err != nil {
		return nil, err
	}
	if err := s.meta.Delete(ctx, metadata.KeyPendingWorkspace, metadata.KeyPendingPlatform); err != nil {
		return nil, err
	}

	return &CompleteResult{WorkspaceID: workspaceID, Platform: platform, Connected: connected}, nil
}

func (s *connectionService) Disconnect(ctx context.Context, workspaceID string, platform models.Platform) error {
	scope, err := s.scope(ctx, workspaceID, platform)
	if err != nil {
		return err
	}
	if err := s.client.DeleteConnections(ctx, scope); err != nil {
		return fmt.Errorf("disconnect %s: %w", scope.Platform, err)
	}
	return nil
}

func (s *connectionService) Status(ctx context.Context, workspaceID string, platform models.Platform) (bool, error) {
	scope, err := s.scope(ctx, workspaceID, platform)
	if err != nil {
		return false, err
	}
	return schedule.ConnectionStatus(ctx, s.client, scope)
}
