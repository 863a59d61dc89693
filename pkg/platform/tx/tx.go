// Package tx carries the active unit of work through context.
//
// Postgres stores call From to decide whether to run on the transaction or the
// pool. Services only see the Runner interface.
package tx

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes fn as one atomic unit of work. If fn returns an error every
// write made through txCtx is discarded.
type Runner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// InMemory serializes units of work over a single mutex. It backs the
// in-memory stores, which have no rollback: callers must finish every check
// before the first write.
type InMemory struct {
	mu sync.Mutex
}

// NewInMemory returns a Runner for the in-memory stores.
func NewInMemory() *InMemory {
	return &InMemory{}
}

type inMemoryKey struct{}

// RunInTx checks for cancellation before taking the lock and never after, so a
// unit of work that has started always runs to completion.
func (r *InMemory) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(inMemoryKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(context.WithValue(context.WithoutCancel(ctx), inMemoryKey{}, true))
}

// DomainError translates a RunInTx failure that the unit of work itself did
// not already classify. Exhausted retries become a concurrent-write conflict,
// an unreachable store becomes unavailable and cancellation before BEGIN
// becomes a timeout.
func DomainError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, retry the request").
			WithReason(dErrors.ReasonConcurrentWrite)
	}
	if de, ok := dErrors.As(err); ok {
		return de
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable, retry later")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled before it started")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
}
