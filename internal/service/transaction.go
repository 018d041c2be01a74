package service

import (
	"context"
	"time"
)

// TransactionManager defines the interface for transaction management.
// Services use this to wrap multiple repository operations in a single transaction.
type TransactionManager interface {
	// WithTransaction executes the given function within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Otherwise, it is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker is a handle on one distributed lock instance.
type Locker interface {
	AcquireWithRetry(ctx context.Context, maxRetries int, retryDelay time.Duration) error
	Release(ctx context.Context) error
}

// LockFactory builds a distributed lock for a key. The refund flow takes one
// per transaction id.
type LockFactory func(key string, ttl time.Duration) Locker
