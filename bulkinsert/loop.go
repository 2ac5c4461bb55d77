package bulkinsert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mevdschee/qsbulk/sink"
)

// finalFlushTimeout bounds the flush performed when Run is cancelled
const finalFlushTimeout = 10 * time.Second

// Run drives flushes until ctx is cancelled. Every tick it flushes when the
// queue is full or the flush interval has elapsed; a full queue signalled by
// Add triggers a flush without waiting for the tick. On cancellation the
// remaining records are flushed once more and that flush's error is returned.
func (m *Manager) Run(ctx context.Context, s sink.Executor, tick time.Duration) error {
	if s == nil {
		return ErrNoSink
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			err := m.Flush(flushCtx, s)
			cancel()
			return err
		case <-ticker.C:
			if m.IsQueueFull() || m.IsFlushDue(m.now()) {
				m.flushLogged(ctx, s)
			}
		case <-m.full:
			if m.IsQueueFull() {
				m.flushLogged(ctx, s)
			}
		}
	}
}

// flushLogged flushes and only logs failures, which Flush already reports
func (m *Manager) flushLogged(ctx context.Context, s sink.Executor) {
	if err := m.Flush(ctx, s); err != nil {
		m.logger.Debug("Flush loop continuing after error", zap.Error(err))
	}
}
