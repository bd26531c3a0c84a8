package pipeline

import (
	"context"
	"time"

	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

type OutboxReader interface {
	ListUnsent(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
}

// StreamPublisher puts raw bytes on a stream. Satisfied by *queue.Queue.
type StreamPublisher interface {
	Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error)
	Name() string
}

// OutboxDispatcher forwards staged envelopes to their streams. Rows are
// marked sent only after the broker accepted them, so a crash between the
// two steps re-sends rather than loses; consumers tolerate the duplicate.
type OutboxDispatcher struct {
	outbox     OutboxReader
	publishers map[string]StreamPublisher
	period     time.Duration
	batchSize  int
}

func NewOutboxDispatcher(outbox OutboxReader, period time.Duration, batchSize int, publishers ...StreamPublisher) *OutboxDispatcher {
	byStream := make(map[string]StreamPublisher, len(publishers))
	for _, p := range publishers {
		byStream[p.Name()] = p
	}
	if period <= 0 {
		period = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxDispatcher{
		outbox:     outbox,
		publishers: byStream,
		period:     period,
		batchSize:  batchSize,
	}
}

// Run loops until the context is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce(ctx)
		}
	}
}

// DispatchOnce forwards one batch of unsent rows, oldest first.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) {
	messages, err := d.outbox.ListUnsent(ctx, d.batchSize)
	if err != nil {
		logger.Error("Failed to load outbox batch", "error", err)
		return
	}

	for _, m := range messages {
		publisher, ok := d.publishers[m.Stream]
		if !ok {
			logger.Error("No publisher for outbox stream", "stream", m.Stream, "outbox_id", m.ID)
			continue
		}

		if _, err := publisher.Publish(ctx, m.Payload, map[string]string{"type": "report-result"}); err != nil {
			// Leave the row unsent; the next tick retries it.
			logger.Error("Failed to publish outbox message", "error", err, "stream", m.Stream, "outbox_id", m.ID)
			return
		}

		if err := d.outbox.MarkSent(ctx, m.ID, time.Now().UTC()); err != nil {
			logger.Error("Failed to mark outbox message sent", "error", err, "outbox_id", m.ID)
			return
		}

		prom.IncOutboxDispatched()
	}
}
