package audit

import (
	"context"
	"log/slog"

	"hackhub/internal/platform/metrics"
)

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, e Event) error
}

// Worker consumes audit events from the publisher's inbox and writes them to
// a sink. Sink failures are logged and counted; the worker keeps going.
type Worker struct {
	sink    Sink
	inbox   <-chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger, metrics: m}
}

// Run blocks until ctx is cancelled, then flushes what is already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return nil
		case e := <-w.inbox:
			w.write(ctx, e)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case e := <-w.inbox:
			w.write(ctx, e)
		default:
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, e Event) {
	if err := w.sink.Write(ctx, e); err != nil {
		w.metrics.IncAuditFailed()
		w.logger.ErrorContext(ctx, "audit sink write failed",
			"action", e.Action,
			"subject", e.Subject,
			"error", err,
		)
	}
}
