// Package schedule turns a flat collection of scheduled items into a
// date-partitioned view and keeps that view consistent with an external
// record store under create, delete and change-notification events.
package schedule

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/postplanner/internal/models"
)

// ErrUnauthenticated is returned by a SessionProvider when there is no
// signed-in user. Views surface it so the caller can show a login prompt.
var ErrUnauthenticated = errors.New("not authenticated")

// EventType is the kind of change carried by a ChangeEvent.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Tables whose changes are streamed.
const (
	TableItems       = "scheduled_items"
	TableConnections = "platform_connections"
)

// ChangeEvent notifies subscribers that the record store changed within a
// scope. Receivers re-fetch; they never apply the event as a patch.
type ChangeEvent struct {
	Type        EventType `json:"type"`
	Table       string    `json:"table"`
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
}

// Scope selects the change stream of one user, optionally narrowed to a
// single workspace.
type Scope struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// Includes reports whether ev falls inside the scope.
func (s Scope) Includes(ev ChangeEvent) bool {
	if ev.UserID != s.UserID {
		return false
	}
	return s.WorkspaceID == "" || ev.WorkspaceID == "" || ev.WorkspaceID == s.WorkspaceID
}

// ConnectionScope identifies the platform connections of one
// (user, workspace, platform) triple.
type ConnectionScope struct {
	UserID      string          `json:"user_id"`
	WorkspaceID string          `json:"workspace_id"`
	Platform    models.Platform `json:"platform"`
}

// Subscription is a live change stream. Close releases it; after Close the
// Events channel is closed.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

// RecordStore is the external persistence collaborator.
type RecordStore interface {
	ListItems(ctx context.Context, q Query) ([]models.ScheduledItem, error)
	InsertItem(ctx context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error)
	DeleteItem(ctx context.Context, id string) error
	CountConnections(ctx context.Context, scope ConnectionScope) (int64, error)
	DeleteConnections(ctx context.Context, scope ConnectionScope) error
	Subscribe(ctx context.Context, scope Scope) (Subscription, error)
}

// WorkspaceStore is the part of the record store dealing with workspaces.
type WorkspaceStore interface {
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
	CreateWorkspace(ctx context.Context, name string) (*models.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*models.Workspace, error)
}

// SessionProvider resolves the identity of the current session.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*models.Identity, error)
	SignOut(ctx context.Context) error
}
