package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/dmitrijs2005/postplanner/internal/server/auth"
	"github.com/dmitrijs2005/postplanner/internal/server/changes"
	"github.com/dmitrijs2005/postplanner/internal/server/config"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/repomanager"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
}

// ConnectionService answers whether a workspace is linked to a platform,
// unlinks it, and starts the linking handoff.
type ConnectionService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifier      changes.Notifier
	oauth         map[models.Platform]*oauth2.Config
	jwtSecret     []byte
	stateValidity time.Duration
}

func NewConnectionService(db *sql.DB, m repomanager.RepositoryManager, n changes.Notifier, cfg *config.Config) *ConnectionService {
	if n == nil {
		n = changes.Nop{}
	}
	oauth := map[models.Platform]*oauth2.Config{}
	if cfg.YouTubeClientID != "" {
		oauth[models.PlatformYouTube] = &oauth2.Config{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			RedirectURL:  cfg.YouTubeRedirectURL,
			Scopes:       youtubeScopes,
			Endpoint:     google.Endpoint,
		}
	}
	return &ConnectionService{
		db:            db,
		repomanager:   m,
		notifier:      n,
		oauth:         oauth,
		jwtSecret:     []byte(cfg.SecretKey),
		stateValidity: cfg.StateTokenValidity,
	}
}

func checkPlatform(scope schedule.ConnectionScope) error {
	if scope.WorkspaceID == "" {
		return fmt.Errorf("%w: workspace is required", common.ErrorValidation)
	}
	if !scope.Platform.Valid() {
		return fmt.Errorf("%w: unsupported platform %q", common.ErrorValidation, scope.Platform)
	}
	return nil
}

// Count returns the number of connections in scope. scope.UserID is
// overwritten with userID.
func (s *ConnectionService) Count(ctx context.Context, userID string, scope schedule.ConnectionScope) (int64, error) {
	scope.UserID = userID
	if err := checkPlatform(scope); err != nil {
		return 0, err
	}
	n, err := s.repomanager.Connections(s.db).Count(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("error counting connections: %w", err)
	}
	return n, nil
}

// Disconnect removes every connection in scope. Removing nothing succeeds.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string, scope schedule.ConnectionScope) error {
	scope.UserID = userID
	if err := checkPlatform(scope); err != nil {
		return err
	}
	n, err := s.repomanager.Connections(s.db).Delete(ctx, scope)
	if err != nil {
		return fmt.Errorf("error deleting connections: %w", err)
	}
	if n > 0 {
		s.notifier.Notify(ctx, schedule.ChangeEvent{
			Type:        schedule.EventDelete,
			Table:       schedule.TableConnections,
			UserID:      userID,
			WorkspaceID: scope.WorkspaceID,
		})
	}
	return nil
}

// AuthURL returns the consent URL that links scope's workspace to the
// platform. The state parameter is a signed token carrying the user and
// workspace, checked by the redirect handler.
func (s *ConnectionService) AuthURL(ctx context.Context, userID string, scope schedule.ConnectionScope) (string, error) {
	scope.UserID = userID
	if err := checkPlatform(scope); err != nil {
		return "", err
	}
	oc, ok := s.oauth[scope.Platform]
	if !ok {
		return "", fmt.Errorf("%w: %s client is not configured", common.ErrorInternal, scope.Platform)
	}
	if _, err := s.repomanager.Workspaces(s.db).Get(ctx, userID, scope.WorkspaceID); err != nil {
		return "", fmt.Errorf("error loading workspace: %w", err)
	}

	state, err := auth.GenerateStateToken(userID, scope.WorkspaceID, string(scope.Platform), s.jwtSecret, s.stateValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}
