// Package models defines the canonical domain entities shared by the server
// and the client: scheduled items, workspaces, platform connections and the
// session identity.
package models

import "time"

// Status is the publication lifecycle state of a ScheduledItem.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPublished, StatusFailed:
		return true
	}
	return false
}

// Targets holds the per-platform publication flags of an item.
type Targets struct {
	YouTube bool `json:"youtube"`
}

// Any reports whether at least one platform is targeted.
func (t Targets) Any() bool {
	return t.YouTube
}

// ScheduledItem is one video queued for publication at ScheduledAt.
// ScheduledAt is immutable once the item is created.
type ScheduledItem struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	WorkspaceID     string    `json:"workspace_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	MediaURL        string    `json:"media_url"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Status          Status    `json:"status"`
	PublishError    string    `json:"publish_error,omitempty"`
	PlatformVideoID string    `json:"platform_video_id,omitempty"`
	Targets         Targets   `json:"targets"`
	CreatedAt       time.Time `json:"created_at"`
}
