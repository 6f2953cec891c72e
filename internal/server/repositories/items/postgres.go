package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

const table = "scheduled_items"

var columns = []string{
	"id", "user_id", "workspace_id", "title", "description", "media_url",
	"scheduled_at", "status", "publish_error", "platform_video_id",
	"target_youtube", "created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	query, args, err := psql.Insert(table).
		Columns("user_id", "workspace_id", "title", "description", "media_url", "scheduled_at", "status", "target_youtube").
		Values(item.UserID, item.WorkspaceID, item.Title, item.Description, item.MediaURL, item.ScheduledAt, string(item.Status), item.Targets.YouTube).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) List(ctx context.Context, q schedule.Query) ([]models.ScheduledItem, error) {
	b := psql.Select(columns...).From(table).Where(sq.Eq{"user_id": q.UserID})
	if q.WorkspaceID != "" {
		b = b.Where(sq.Eq{"workspace_id": q.WorkspaceID})
	}
	if !q.From.IsZero() {
		b = b.Where(sq.GtOrEq{"scheduled_at": q.From})
	}
	if !q.Before.IsZero() {
		b = b.Where(sq.Lt{"scheduled_at": q.Before})
	}
	if q.Order == schedule.Descending {
		b = b.OrderBy("scheduled_at DESC")
	} else {
		b = b.OrderBy("scheduled_at ASC")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return []models.ScheduledItem{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ScheduledItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.ScheduledItem, error) {
	query, args, err := psql.Select(columns...).From(table).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM scheduled_items
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.ScheduledItem, error) {
	var (
		it              models.ScheduledItem
		status          string
		publishError    sql.NullString
		platformVideoID sql.NullString
	)
	err := s.Scan(&it.ID, &it.UserID, &it.WorkspaceID, &it.Title, &it.Description, &it.MediaURL,
		&it.ScheduledAt, &status, &publishError, &platformVideoID, &it.Targets.YouTube, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.Status = models.Status(status)
	it.PublishError = publishError.String
	it.PlatformVideoID = platformVideoID.String
	return &it, nil
}
