package sink

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mevdschee/qsbulk/metrics"
)

// Monitor periodically pings the database and tracks whether it is reachable
type Monitor struct {
	db      *sql.DB
	timeout time.Duration
	healthy atomic.Bool
	logger  *zap.Logger
}

// NewMonitor creates a health monitor. The database starts out as healthy.
func NewMonitor(db *sql.DB, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		db:      db,
		timeout: 2 * time.Second,
		logger:  logger,
	}
	m.healthy.Store(true)
	metrics.DatabaseUp.Set(1)
	return m
}

// StartHealthChecks begins periodic health checks until ctx is cancelled
func (m *Monitor) StartHealthChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run initial health check immediately
	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check pings the database once and records the result
func (m *Monitor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.PingContext(pingCtx)
	if err != nil {
		if m.healthy.Swap(false) {
			m.logger.Warn("Database marked unhealthy", zap.Error(err))
		}
		metrics.DatabaseUp.Set(0)
		return false
	}

	if !m.healthy.Swap(true) {
		m.logger.Info("Database marked healthy")
	}
	metrics.DatabaseUp.Set(1)
	return true
}
