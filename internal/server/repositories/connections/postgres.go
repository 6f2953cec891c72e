package connections

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

const table = "platform_connections"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func match(scope schedule.ConnectionScope) sq.Eq {
	return sq.Eq{
		"user_id":      scope.UserID,
		"workspace_id": scope.WorkspaceID,
		"platform":     string(scope.Platform),
	}
}

func (r *PostgresRepository) Count(ctx context.Context, scope schedule.ConnectionScope) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(match(scope)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		if dbx.IsInvalidInput(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, scope schedule.ConnectionScope) (int64, error) {
	query, args, err := psql.Delete(table).Where(match(scope)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
