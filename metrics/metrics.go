package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsAdded counts records appended to the buffers by kind
	RecordsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsbulk_records_added_total",
			Help: "Total number of records added to the insert buffers",
		},
		[]string{"kind"},
	)

	// RecordsFiltered counts records dropped at encoding time by kind
	RecordsFiltered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsbulk_records_filtered_total",
			Help: "Total number of records that encoded to no rows",
		},
		[]string{"kind"},
	)

	// RowsEncoded counts value tuples written into bulk statements by table
	RowsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsbulk_rows_encoded_total",
			Help: "Total number of rows encoded into bulk INSERT statements",
		},
		[]string{"table"},
	)

	// BufferedRecords tracks the current aggregate buffer size
	BufferedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qsbulk_buffered_records",
			Help: "Number of records currently buffered across all kinds",
		},
	)

	// Capacity tracks the configured maximum buffered record count
	Capacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qsbulk_capacity",
			Help: "Maximum buffered records before a forced flush",
		},
	)

	// FlushTotal counts flushes by result (ok, error, empty)
	FlushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsbulk_flush_total",
			Help: "Total number of flushes",
		},
		[]string{"result"},
	)

	// FlushDuration tracks how long the sink took to execute a flush
	FlushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qsbulk_flush_duration_seconds",
			Help:    "Flush duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FlushStatements tracks the number of statements per flush
	FlushStatements = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qsbulk_flush_statements",
			Help:    "Number of SQL statements sent per flush",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
		},
	)

	// StatementsExecuted counts statements executed by the sink by statement type and target table
	StatementsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsbulk_statements_executed_total",
			Help: "Total SQL statements executed successfully",
		},
		[]string{"statement_type", "table"},
	)

	// DatabaseUp is 1 when the last database health check succeeded
	DatabaseUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qsbulk_database_up",
			Help: "Whether the database answered the last health check",
		},
	)

	once sync.Once
)

// Init registers all metrics with Prometheus
func Init() {
	once.Do(func() {
		prometheus.MustRegister(RecordsAdded)
		prometheus.MustRegister(RecordsFiltered)
		prometheus.MustRegister(RowsEncoded)
		prometheus.MustRegister(BufferedRecords)
		prometheus.MustRegister(Capacity)
		prometheus.MustRegister(FlushTotal)
		prometheus.MustRegister(FlushDuration)
		prometheus.MustRegister(FlushStatements)
		prometheus.MustRegister(StatementsExecuted)
		prometheus.MustRegister(DatabaseUp)
	})
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
