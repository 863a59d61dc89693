package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"hackhub/internal/platform/metrics"
	"hackhub/pkg/requestcontext"
)

// ErrBufferFull is returned by Emit when the worker has fallen behind.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher buffers audit events for the Worker. Emit never blocks: audit is
// fail-open and must not hold up a committed business operation.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher creates a publisher with room for buffer pending events.
func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		inbox:  make(chan Event, buffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event and queues it.
func (p *Publisher) Emit(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case p.inbox <- e:
		p.metrics.IncAuditEnqueued()
		return nil
	default:
		p.metrics.IncAuditDropped()
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", e.Action,
			"subject", e.Subject,
			"request_id", e.RequestID,
		)
		return ErrBufferFull
	}
}

// Inbox is the channel the Worker drains.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
