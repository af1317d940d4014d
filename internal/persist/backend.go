package persist

import (
	"context"

	"github.com/pkg/errors"
)

// DefaultQuota mirrors the per-origin budget of browser local storage.
const DefaultQuota = 5 << 20

var ErrQuotaExceeded = errors.New("snapshot quota exceeded")

// Backend is a durable key/value store for serialized snapshots.
// Get returns nil data and no error for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

func checkQuota(quota int64, data []byte) error {
	if quota > 0 && int64(len(data)) > quota {
		return errors.Wrapf(ErrQuotaExceeded, "%d bytes, limit %d", len(data), quota)
	}
	return nil
}
