package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {
	query := `
		INSERT INTO workspaces (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, ws.UserID, ws.Name).Scan(&ws.ID, &ws.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ws, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM workspaces
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Workspace, 0)
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Workspace, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM workspaces
		WHERE id = $1 AND user_id = $2
	`
	ws := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ws, nil
}
