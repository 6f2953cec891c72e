package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// WorkspaceService manages the workspaces (niches) of a user.
type WorkspaceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
}

func NewWorkspaceService(db *sql.DB, m repomanager.RepositoryManager) *WorkspaceService {
	return &WorkspaceService{db: db, repomanager: m, validate: common.NewValidator()}
}

// Create stores a workspace named name for userID. Surrounding whitespace
// is trimmed; an empty name is rejected with ErrorValidation.
func (s *WorkspaceService) Create(ctx context.Context, userID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.Var(name, "workspace_name"); err != nil {
		return nil, fmt.Errorf("%w: workspace name: %v", common.ErrorValidation, err)
	}

	ws, err := s.repomanager.Workspaces(s.db).Create(ctx, &models.Workspace{UserID: userID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("error creating workspace: %w", err)
	}
	return ws, nil
}

// List returns the user's workspaces, oldest first.
func (s *WorkspaceService) List(ctx context.Context, userID string) ([]models.Workspace, error) {
	list, err := s.repomanager.Workspaces(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}
	return list, nil
}

// Get returns a workspace owned by userID, or ErrorNotFound.
func (s *WorkspaceService) Get(ctx context.Context, userID, id string) (*models.Workspace, error) {
	ws, err := s.repomanager.Workspaces(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error loading workspace: %w", err)
	}
	return ws, nil
}
