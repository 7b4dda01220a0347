package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbedding struct{ err error }

func (m *mockEmbedding) HealthCheck(_ context.Context) error { return m.err }

type mockProbe struct{ available bool }

func (m *mockProbe) Available() bool { return m.available }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbedding{}, &mockProbe{available: true})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected Healthy, got %v", report.Status)
	}
	for name, result := range report.Checks {
		if result != CheckOK {
			t.Errorf("check %s: expected ok, got %v", name, result)
		}
	}
	if len(report.Checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(report.Checks))
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, &mockEmbedding{}, &mockProbe{available: true})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected Degraded, got %v", report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("expected database error, got %v", report.Checks["database"])
	}
	if report.Checks["store"] != CheckOK {
		t.Errorf("expected store ok, got %v", report.Checks["store"])
	}
}

func TestCheck_EmbeddingProviderDown(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbedding{err: errors.New("provider unreachable")}, &mockProbe{available: true})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected Degraded, got %v", report.Status)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding error, got %v", report.Checks["embedding"])
	}
}

func TestCheck_FallbackStoreIsDegradedNotFailed(t *testing.T) {
	svc := New(nil, nil, &mockProbe{available: false})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("expected Degraded, got %v", report.Status)
	}
	if report.Checks["store"] != CheckFallback {
		t.Errorf("expected fallback, got %v", report.Checks["store"])
	}
}

func TestCheck_NilOptionalCheckersSkipped(t *testing.T) {
	svc := New(nil, nil, &mockProbe{available: true})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("expected Healthy, got %v", report.Status)
	}
	if len(report.Checks) != 1 {
		t.Errorf("expected only the store check, got %v", report.Checks)
	}
}
