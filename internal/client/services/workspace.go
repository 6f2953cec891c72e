package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/go-playground/validator/v10"
)

// ErrWorkspaceAmbiguous is returned by Resolve when a name matches more
// than one workspace.
var ErrWorkspaceAmbiguous = errors.New("workspace name is ambiguous")

type WorkspaceService interface {
	List(ctx context.Context) ([]models.Workspace, error)
	Create(ctx context.Context, name string) (*models.Workspace, error)
	// Home lists the workspaces and selects the only one when there is
	// exactly one.
	Home(ctx context.Context) (*models.Workspace, []models.Workspace, error)
	// Resolve finds a workspace by id or, failing that, by case-insensitive
	// name.
	Resolve(ctx context.Context, ref string) (*models.Workspace, error)
}

type workspaceService struct {
	store    schedule.WorkspaceStore
	validate *validator.Validate
}

func NewWorkspaceService(store schedule.WorkspaceStore) WorkspaceService {
	return &workspaceService{store: store, validate: common.NewValidator()}
}

func (s *workspaceService) List(ctx context.Context) ([]models.Workspace, error) {
	list, err := s.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return list, nil
}

func (s *workspaceService) Create(ctx context.Context, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.Var(name, "workspace_name"); err != nil {
		return nil, fmt.Errorf("%w: name: %s", common.ErrorValidation, describe(err))
	}

	ws, err := s.store.CreateWorkspace(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return ws, nil
}

func (s *workspaceService) Home(ctx context.Context) (*models.Workspace, []models.Workspace, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 1 {
		return &list[0], list, nil
	}
	return nil, list, nil
}

func (s *workspaceService) Resolve(ctx context.Context, ref string) (*models.Workspace, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: workspace is required", common.ErrorValidation)
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.Workspace
	for i := range list {
		if list[i].ID == ref {
			return &list[i], nil
		}
		if strings.EqualFold(list[i].Name, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: %q", ErrWorkspaceAmbiguous, ref)
			}
			match = &list[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("workspace %q: %w", ref, common.ErrorNotFound)
	}
	return match, nil
}
