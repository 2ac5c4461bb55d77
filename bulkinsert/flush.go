package bulkinsert

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mevdschee/qsbulk/encoder"
	"github.com/mevdschee/qsbulk/metrics"
	"github.com/mevdschee/qsbulk/record"
	"github.com/mevdschee/qsbulk/sink"
)

var entries = encoder.Entries()

// BuildStatements drains every buffer and returns the SQL to execute:
// one bulk INSERT per non-empty table in registry order, followed by each
// pass-through statement on its own. Calling it again without new adds
// returns an empty list.
func (m *Manager) BuildStatements() []string {
	drained, _, _ := m.drain()
	return encodeStatements(drained)
}

func encodeStatements(drained [record.NumKinds][]record.Record) []string {
	var statements []string

	for _, e := range entries {
		records := drained[e.Kind]
		if len(records) == 0 {
			continue
		}
		tuples := make([]string, 0, len(records))
		for _, rec := range records {
			t := e.Encode(rec)
			if len(t) == 0 {
				metrics.RecordsFiltered.WithLabelValues(e.Kind.String()).Inc()
				continue
			}
			tuples = append(tuples, t...)
		}
		if stmt, ok := encoder.BuildInsert(e.Table, tuples); ok {
			statements = append(statements, stmt)
			metrics.RowsEncoded.WithLabelValues(e.Table).Add(float64(len(tuples)))
		}
	}

	for _, rec := range drained[record.KindRawStatement] {
		rs, ok := rec.(record.RawStatement)
		if !ok || strings.TrimSpace(rs.SQL) == "" {
			metrics.RecordsFiltered.WithLabelValues(record.KindRawStatement.String()).Inc()
			continue
		}
		statements = append(statements, rs.SQL)
	}

	return statements
}

// Flush drains the buffers and hands the statements to the sink. Local state
// is reset whether or not the sink succeeds: a failed flush is returned as a
// *FlushError and its records are not re-queued.
func (m *Manager) Flush(ctx context.Context, s sink.Executor) error {
	if s == nil {
		return ErrNoSink
	}

	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	flushID := uuid.NewString()
	drained, count, useTransaction := m.drain()
	statements := encodeStatements(drained)

	start := time.Now()
	var err error
	if len(statements) > 0 {
		err = s.ExecuteBulk(ctx, statements, useTransaction)
	}
	elapsed := time.Since(start)

	m.mu.Lock()
	m.lastFlush = m.now()
	m.mu.Unlock()

	if len(statements) == 0 {
		metrics.FlushTotal.WithLabelValues("empty").Inc()
		m.logger.Debug("Nothing to flush",
			zap.String("flush_id", flushID),
			zap.Int("records", count))
		return nil
	}

	metrics.FlushDuration.Observe(elapsed.Seconds())
	metrics.FlushStatements.Observe(float64(len(statements)))

	if err != nil {
		metrics.FlushTotal.WithLabelValues("error").Inc()
		m.logger.Error("Flush failed, buffered records dropped",
			zap.String("flush_id", flushID),
			zap.Int("statements", len(statements)),
			zap.Int("records", count),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return &FlushError{
			FlushID:    flushID,
			Records:    count,
			Statements: statements,
			Err:        err,
		}
	}

	metrics.FlushTotal.WithLabelValues("ok").Inc()
	m.logger.Info("Flushed buffered records",
		zap.String("flush_id", flushID),
		zap.Int("statements", len(statements)),
		zap.Int("records", count),
		zap.Duration("duration", elapsed))
	return nil
}
