// Package connections answers existence checks over linked platform
// accounts and removes them by (user, workspace, platform) match.
package connections

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

type Repository interface {
	Count(ctx context.Context, scope schedule.ConnectionScope) (int64, error)
	// Delete removes every connection matching scope and reports how many
	// rows went away. Zero rows is not an error.
	Delete(ctx context.Context, scope schedule.ConnectionScope) (int64, error)
}
