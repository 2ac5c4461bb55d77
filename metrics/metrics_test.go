package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Init(t *testing.T) {
	// Init should not panic when called multiple times
	Init()
	Init()
}

func TestMetrics_Handler(t *testing.T) {
	Init()

	RecordsAdded.WithLabelValues("speech").Inc()
	RecordsFiltered.WithLabelValues("loot").Inc()
	RowsEncoded.WithLabelValues("qs_player_speech").Inc()
	FlushTotal.WithLabelValues("ok").Inc()
	StatementsExecuted.WithLabelValues("insert", "qs_player_speech").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	expectedMetrics := []string{
		"qsbulk_records_added_total",
		"qsbulk_records_filtered_total",
		"qsbulk_rows_encoded_total",
		"qsbulk_buffered_records",
		"qsbulk_capacity",
		"qsbulk_flush_total",
		"qsbulk_flush_duration_seconds",
		"qsbulk_flush_statements",
		"qsbulk_statements_executed_total",
		"qsbulk_database_up",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric %q not found in response", metric)
		}
	}
}

func TestMetrics_Increment(t *testing.T) {
	Init()

	before := testutil.ToFloat64(RecordsAdded.WithLabelValues("merchant_transaction"))
	RecordsAdded.WithLabelValues("merchant_transaction").Add(3)
	after := testutil.ToFloat64(RecordsAdded.WithLabelValues("merchant_transaction"))

	if after-before != 3 {
		t.Errorf("Expected counter to grow by 3, got %v", after-before)
	}

	BufferedRecords.Set(42)
	if got := testutil.ToFloat64(BufferedRecords); got != 42 {
		t.Errorf("Expected gauge 42, got %v", got)
	}
}
