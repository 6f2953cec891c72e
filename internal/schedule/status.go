package schedule

import (
	"context"
	"fmt"
)

// ConnectionCounter is the part of a RecordStore ConnectionStatus needs.
type ConnectionCounter interface {
	CountConnections(ctx context.Context, scope ConnectionScope) (int64, error)
}

// ConnectionStatus reports whether at least one platform connection exists
// for the scope. It is an existence check, nothing is cached.
func ConnectionStatus(ctx context.Context, store ConnectionCounter, scope ConnectionScope) (bool, error) {
	n, err := store.CountConnections(ctx, scope)
	if err != nil {
		return false, fmt.Errorf("count connections: %w", err)
	}
	return n > 0, nil
}
