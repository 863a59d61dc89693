package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"hackhub/internal/platform/metrics"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
)

// TxManager runs units of work in READ COMMITTED transactions. Stores take
// explicit FOR UPDATE row locks where an operation needs serialization.
//
// Cancellation is only honored before BEGIN. Once a transaction has started it
// runs on a detached context bounded by the tx timeout, so it either commits
// or rolls back in full. Serialization failures and deadlocks are retried with
// exponential backoff; when retries run out the error wraps sentinel.ErrConflict.
// A transaction that cannot be opened at all wraps sentinel.ErrUnavailable.
type TxManager struct {
	db         *sql.DB
	timeout    time.Duration
	maxRetries uint64
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// TxOption configures a TxManager.
type TxOption func(*TxManager)

func WithTxTimeout(d time.Duration) TxOption {
	return func(m *TxManager) { m.timeout = d }
}

func WithMaxRetries(n uint64) TxOption {
	return func(m *TxManager) { m.maxRetries = n }
}

func WithTxLogger(logger *slog.Logger) TxOption {
	return func(m *TxManager) { m.logger = logger }
}

func WithTxMetrics(m *metrics.Metrics) TxOption {
	return func(tm *TxManager) { tm.metrics = m }
}

// NewTxManager creates a runner over db.
func NewTxManager(db *sql.DB, opts ...TxOption) *TxManager {
	m := &TxManager{
		db:         db,
		timeout:    5 * time.Second,
		maxRetries: 3,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunInTx implements tx.Runner. A call made with a context that already
// carries a transaction joins it.
func (m *TxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	attempt := 0
	op := func() error {
		attempt++
		err := m.runOnce(detached, fn)
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			m.metrics.IncTxRetry()
			m.logger.WarnContext(detached, "transaction aborted, retrying",
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	err := backoff.Retry(op, backoff.WithMaxRetries(policy, m.maxRetries))
	if err != nil && IsRetryable(err) {
		return fmt.Errorf("%w: gave up after %d attempts: %w", sentinel.ErrConflict, attempt, err)
	}
	return err
}

func (m *TxManager) runOnce(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sqlTx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", sentinel.ErrUnavailable, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.ErrorContext(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
