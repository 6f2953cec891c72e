package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/dmitrijs2005/postplanner/internal/server/changes"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

type newItem struct {
	WorkspaceID string `validate:"required"`
	Title       string `validate:"title"`
	Description string `validate:"description"`
	MediaURL    string `validate:"required,url"`
}

// ScheduleService reads and mutates the scheduled items of the caller.
// Every query and mutation is confined to the calling user.
type ScheduleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    changes.Notifier
	validate    *validator.Validate
}

func NewScheduleService(db *sql.DB, m repomanager.RepositoryManager, n changes.Notifier) *ScheduleService {
	if n == nil {
		n = changes.Nop{}
	}
	return &ScheduleService{db: db, repomanager: m, notifier: n, validate: common.NewValidator()}
}

// List returns the caller's items matching q. q.UserID is overwritten.
func (s *ScheduleService) List(ctx context.Context, userID string, q schedule.Query) ([]models.ScheduledItem, error) {
	q.UserID = userID
	list, err := s.repomanager.Items(s.db).List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return list, nil
}

// Create validates item and stores it for userID in status scheduled.
// The target workspace must belong to the caller.
func (s *ScheduleService) Create(ctx context.Context, userID string, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: item is required", common.ErrorValidation)
	}

	in := *item
	in.ID = ""
	in.UserID = userID
	in.Title = strings.TrimSpace(in.Title)
	in.Status = models.StatusScheduled
	in.PublishError = ""
	in.PlatformVideoID = ""

	v := newItem{WorkspaceID: in.WorkspaceID, Title: in.Title, Description: in.Description, MediaURL: in.MediaURL}
	if err := s.validate.Struct(v); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", common.ErrorValidation)
	}
	if !in.Targets.Any() {
		return nil, fmt.Errorf("%w: at least one target platform is required", common.ErrorValidation)
	}

	var created *models.ScheduledItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Workspaces(tx).Get(ctx, userID, in.WorkspaceID); err != nil {
			return fmt.Errorf("error loading workspace: %w", err)
		}
		var err error
		created, err = s.repomanager.Items(tx).Insert(ctx, &in)
		if err != nil {
			return fmt.Errorf("error creating item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, schedule.ChangeEvent{
		Type:        schedule.EventInsert,
		Table:       schedule.TableItems,
		RecordID:    created.ID,
		UserID:      userID,
		WorkspaceID: created.WorkspaceID,
	})
	return created, nil
}

// Delete removes an item owned by userID. Items of other users are
// reported as ErrorNotFound.
func (s *ScheduleService) Delete(ctx context.Context, userID, id string) error {
	var workspaceID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		item, err := repo.Get(ctx, userID, id)
		if err != nil {
			return fmt.Errorf("error loading item: %w", err)
		}
		workspaceID = item.WorkspaceID
		if err := repo.Delete(ctx, userID, id); err != nil {
			return fmt.Errorf("error deleting item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, schedule.ChangeEvent{
		Type:        schedule.EventDelete,
		Table:       schedule.TableItems,
		RecordID:    id,
		UserID:      userID,
		WorkspaceID: workspaceID,
	})
	return nil
}
