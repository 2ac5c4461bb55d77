package bulkinsert

import (
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for the insert manager
type Config struct {
	MaxRecords     int           // Buffered records across all kinds before the queue is full (1000 default)
	FlushInterval  time.Duration // Time between flushes (5s default)
	UseTransaction bool          // Ask the sink to run each flush in one transaction
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxRecords:     1000,
		FlushInterval:  5 * time.Second,
		UseTransaction: true,
	}
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for flush reporting
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
