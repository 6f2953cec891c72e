package schedule

import (
	"time"

	"github.com/dmitrijs2005/postplanner/internal/models"
)

// Query is the scope and range of a fetch from the record store.
// From is inclusive, Before is exclusive; a zero value leaves that side open.
type Query struct {
	UserID      string    `json:"user_id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	From        time.Time `json:"from,omitempty"`
	Before      time.Time `json:"before,omitempty"`
	Order       Direction `json:"order"`
}

// StartOfDay is midnight of now's calendar day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// UpcomingQuery selects the user's items scheduled today or later, ascending.
func UpcomingQuery(userID string, now time.Time) Query {
	return Query{
		UserID: userID,
		From:   StartOfDay(now),
		Order:  Ascending,
	}
}

// HistoryQuery selects the user's items scheduled before today, newest first.
func HistoryQuery(userID string, now time.Time) Query {
	return Query{
		UserID: userID,
		Before: StartOfDay(now),
		Order:  Descending,
	}
}

// WorkspaceQuery is UpcomingQuery narrowed to one workspace.
func WorkspaceQuery(userID, workspaceID string, now time.Time) Query {
	q := UpcomingQuery(userID, now)
	q.WorkspaceID = workspaceID
	return q
}

// Matches applies the query predicate to a single item.
func (q Query) Matches(item models.ScheduledItem) bool {
	if item.UserID != q.UserID {
		return false
	}
	if q.WorkspaceID != "" && item.WorkspaceID != q.WorkspaceID {
		return false
	}
	if !q.From.IsZero() && item.ScheduledAt.Before(q.From) {
		return false
	}
	if !q.Before.IsZero() && !item.ScheduledAt.Before(q.Before) {
		return false
	}
	return true
}

// Scope is the change stream the query results depend on.
func (q Query) Scope() Scope {
	return Scope{UserID: q.UserID, WorkspaceID: q.WorkspaceID}
}
