package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
}

// CacheStoreInterface defines the interface for carrier profile caching.
type CacheStoreInterface interface {
	GetCarrier(ctx context.Context, carrierID string) (*CachedCarrier, error)
	SetCarrier(ctx context.Context, carrier *CachedCarrier) error
	InvalidateCarrier(ctx context.Context, carrierID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
