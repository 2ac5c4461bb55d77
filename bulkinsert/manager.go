package bulkinsert

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mevdschee/qsbulk/metrics"
	"github.com/mevdschee/qsbulk/packet"
	"github.com/mevdschee/qsbulk/record"
)

// Manager buffers records per kind and turns them into one bulk INSERT per
// table on flush. It is safe for concurrent use: a single mutex guards the
// buffers and the aggregate count, so a drain is atomic with respect to adds.
type Manager struct {
	mu             sync.Mutex
	buffers        [record.NumKinds][]record.Record
	total          int
	maxRecords     int
	flushInterval  time.Duration
	useTransaction bool
	lastFlush      time.Time

	flushMu sync.Mutex // serializes flushes so batches reach the sink in order
	full    chan struct{}
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new insert manager
func New(config Config, opts ...Option) *Manager {
	m := &Manager{
		maxRecords:     config.MaxRecords,
		flushInterval:  config.FlushInterval,
		useTransaction: config.UseTransaction,
		full:           make(chan struct{}, 1),
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.maxRecords < 1 {
		m.maxRecords = 1
	}
	m.lastFlush = m.now()
	metrics.Capacity.Set(float64(m.maxRecords))
	return m
}

// Add appends a record to the buffer for its kind. Records are validated
// when encoded, not here; a nil record is ignored.
func (m *Manager) Add(rec record.Record) {
	if rec == nil {
		return
	}
	kind := rec.Kind()
	if !kind.Valid() {
		m.logger.Warn("Dropping record with unknown kind", zap.Stringer("kind", kind))
		return
	}

	m.mu.Lock()
	m.buffers[kind] = append(m.buffers[kind], rec)
	m.total++
	full := m.total >= m.maxRecords
	metrics.BufferedRecords.Set(float64(m.total))
	m.mu.Unlock()

	metrics.RecordsAdded.WithLabelValues(kind.String()).Inc()

	if full {
		m.signalFull()
	}
}

// AddSpeech and the adders below buffer one record of their kind
func (m *Manager) AddSpeech(r record.Speech)                           { m.Add(r) }
func (m *Manager) AddItemDelete(r record.ItemDelete)                   { m.Add(r) }
func (m *Manager) AddItemMove(r record.ItemMove)                       { m.Add(r) }
func (m *Manager) AddMerchantTransaction(r record.MerchantTransaction) { m.Add(r) }
func (m *Manager) AddAARateHourly(r record.AARateHourly)               { m.Add(r) }
func (m *Manager) AddAAPurchase(r record.AAPurchase)                   { m.Add(r) }
func (m *Manager) AddTradeskillEvent(r record.TradeskillEvent)         { m.Add(r) }
func (m *Manager) AddQGlobalUpdate(r record.QGlobalUpdate)             { m.Add(r) }
func (m *Manager) AddLoot(r record.Loot)                               { m.Add(r) }

// AddRawStatement buffers a complete SQL statement that is flushed verbatim
func (m *Manager) AddRawStatement(sql string) {
	m.Add(record.RawStatement{SQL: sql})
}

// AddServerPacket decodes a pass-through statement from a packet and buffers it
func (m *Manager) AddServerPacket(p *packet.ServerPacket) error {
	rs, err := record.DecodeRawStatement(p)
	if err != nil {
		return err
	}
	m.Add(rs)
	return nil
}

func (m *Manager) signalFull() {
	select {
	case m.full <- struct{}{}:
	default:
	}
}

// Full returns a channel that receives a value when an add fills the queue
func (m *Manager) Full() <-chan struct{} {
	return m.full
}

// TotalRecordCount returns the number of buffered records across all kinds
func (m *Manager) TotalRecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Len returns the number of buffered records of one kind
func (m *Manager) Len(kind record.Kind) int {
	if !kind.Valid() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers[kind])
}

// IsQueueFull reports whether the aggregate count has reached capacity
func (m *Manager) IsQueueFull() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total >= m.maxRecords
}

// IsFlushDue reports whether the flush interval has elapsed since the last flush
func (m *Manager) IsFlushDue(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return now.Sub(m.lastFlush) >= m.flushInterval
}

// LastFlushTime returns when the last flush finished
func (m *Manager) LastFlushTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFlush
}

// MaxRecords returns the current capacity
func (m *Manager) MaxRecords() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxRecords
}

// SetMaxRecords resizes the capacity at runtime. Values below 1 are raised to 1.
func (m *Manager) SetMaxRecords(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.maxRecords = n
	full := m.total >= n
	m.mu.Unlock()

	metrics.Capacity.Set(float64(n))
	if full {
		m.signalFull()
	}
}

// FlushInterval returns the current flush interval
func (m *Manager) FlushInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushInterval
}

// SetFlushInterval changes the flush interval at runtime
func (m *Manager) SetFlushInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushInterval = d
}

// drain takes every buffer and resets the aggregate count in one critical section
func (m *Manager) drain() (drained [record.NumKinds][]record.Record, count int, useTransaction bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drained = m.buffers
	count = m.total
	useTransaction = m.useTransaction
	m.buffers = [record.NumKinds][]record.Record{}
	m.total = 0
	metrics.BufferedRecords.Set(0)
	return drained, count, useTransaction
}
