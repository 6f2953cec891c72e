// Package items persists scheduled items and answers scoped range queries
// over them.
package items

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

type Repository interface {
	Insert(ctx context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error)
	// List returns the items matching q ordered by scheduled time in q.Order.
	List(ctx context.Context, q schedule.Query) ([]models.ScheduledItem, error)
	// Get returns an item owned by userID.
	Get(ctx context.Context, userID, id string) (*models.ScheduledItem, error)
	// Delete removes an item owned by userID. A missing row yields
	// common.ErrorNotFound.
	Delete(ctx context.Context, userID, id string) error
}
