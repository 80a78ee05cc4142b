package cache

import (
	"context"
	"time"
)

// Store is a byte-value cache with expiry
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix and reports how many went
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
