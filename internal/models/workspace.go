package models

import "time"

// Workspace is a named partition of a user's scheduled items and platform
// connections.
type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Platform names a third-party publishing platform.
type Platform string

const PlatformYouTube Platform = "youtube"

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	return p == PlatformYouTube
}

// PlatformConnection is a linked third-party account scoped to a workspace.
// There is at most one connection per (user, workspace, platform).
type PlatformConnection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id"`
	Platform    Platform  `json:"platform"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Identity is the user behind the current session.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
