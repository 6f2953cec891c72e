package services

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/client/client"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

// SessionClient is the part of the API client dealing with the session.
type SessionClient interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.Identity, error)
	Healthy(ctx context.Context) error
	SetTokens(accessToken, refreshToken string)
	OnTokens(fn client.TokenHook)
}

// UploadClient obtains upload tickets and stores the resulting items.
type UploadClient interface {
	CreateUploadTicket(ctx context.Context, filename, contentType string) (*api.UploadTicketResponse, error)
	InsertItem(ctx context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error)
}

// ConnectionClient reads and removes platform connections and hands out
// authorization URLs.
type ConnectionClient interface {
	CountConnections(ctx context.Context, scope schedule.ConnectionScope) (int64, error)
	DeleteConnections(ctx context.Context, scope schedule.ConnectionScope) error
	AuthURL(ctx context.Context, workspaceID string, platform models.Platform) (string, error)
}

var (
	_ SessionClient    = (*client.GRPCClient)(nil)
	_ UploadClient     = (*client.GRPCClient)(nil)
	_ ConnectionClient = (*client.GRPCClient)(nil)
)
