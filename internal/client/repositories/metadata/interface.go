// Package metadata is the local key/value store of the CLI. It keeps the
// session tokens between invocations and the pending-workspace marker set
// before an OAuth handoff.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken      = "session.access_token"
	KeyRefreshToken     = "session.refresh_token"
	KeyPendingWorkspace = "oauth.pending_workspace"
	KeyPendingPlatform  = "oauth.pending_platform"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
