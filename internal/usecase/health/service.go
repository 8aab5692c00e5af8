// Package health reports process liveness for deployment platforms.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]bool
}

// Service coordinates health checks. The endpoint answers immediately
// even while an ingestion run is still in progress.
type Service struct {
	db       DBPinger
	provider ProviderChecker
}

// New creates a Service. provider may be nil when no provider check is
// wanted (tests).
func New(db DBPinger, provider ProviderChecker) *Service {
	return &Service{db: db, provider: provider}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]bool{
		"database": s.db.Ping(ctx) == nil,
	}
	if s.provider != nil {
		checks["provider"] = s.provider.HealthCheck(ctx) == nil
	}

	status := Healthy
	for _, ok := range checks {
		if !ok {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
