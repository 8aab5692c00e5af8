package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want healthy", report.Status)
	}
	if !report.Checks["database"] {
		t.Error("database check should pass")
	}
	if !report.Checks["provider"] {
		t.Error("provider check should pass")
	}
}

func TestCheck_DegradedOnDBFailure(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("no route to host")}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
}

func TestCheck_DegradedOnProviderFailure(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("401 unauthorized")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
	if report.Checks["provider"] {
		t.Error("provider check should fail")
	}
	if !report.Checks["database"] {
		t.Error("database check should still pass")
	}
}

func TestCheck_NilProviderSkipsCheck(t *testing.T) {
	svc := New(&mockPinger{}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want healthy", report.Status)
	}
	if _, ok := report.Checks["provider"]; ok {
		t.Error("no provider check expected when none is configured")
	}
}
