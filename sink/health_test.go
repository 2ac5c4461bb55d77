package sink

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMonitor_Check(t *testing.T) {
	db := setupTestDB(t)

	core, logs := observer.New(zap.InfoLevel)
	m := NewMonitor(db, zap.New(core))

	if !m.Check(context.Background()) || !m.healthy.Load() {
		t.Fatal("Expected open database to be healthy")
	}

	db.Close()
	if m.Check(context.Background()) {
		t.Error("Expected closed database to be unhealthy")
	}
	if m.healthy.Load() {
		t.Error("Expected monitor to report unhealthy")
	}
	if logs.FilterMessage("Database marked unhealthy").Len() != 1 {
		t.Error("Expected a single unhealthy transition to be logged")
	}

	m.Check(context.Background())
	if logs.FilterMessage("Database marked unhealthy").Len() != 1 {
		t.Error("Expected repeated failures not to be logged again")
	}
}

func TestMonitor_HealthCheckContext(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := NewMonitor(db, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.StartHealthChecks(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Health checks did not stop after context cancellation")
	}
}
