// Package workspaces stores the named partitions (niches) of a user's
// schedule.
package workspaces

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/models"
)

type Repository interface {
	Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error)
	// ListByUser returns the user's workspaces, oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.Workspace, error)
	// Get returns the workspace only if it belongs to userID; otherwise
	// common.ErrorNotFound.
	Get(ctx context.Context, userID, id string) (*models.Workspace, error)
}
