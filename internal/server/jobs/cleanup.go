package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/logging"
)

// RefreshTokenCleanupName is the name of the expired-token cleanup job.
const RefreshTokenCleanupName = "refresh-token-cleanup"

// ExpiredTokenDeleter removes refresh tokens that expired before now.
type ExpiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RefreshTokenCleanup returns a Job that purges expired refresh tokens.
func RefreshTokenCleanup(repo ExpiredTokenDeleter, now func() time.Time, logger logging.Logger) Job {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return func(ctx context.Context) error {
		n, err := repo.DeleteExpired(ctx, now())
		if err != nil {
			return fmt.Errorf("delete expired refresh tokens: %w", err)
		}
		if n > 0 {
			logger.Info(ctx, "expired refresh tokens removed", "count", n)
		}
		return nil
	}
}
