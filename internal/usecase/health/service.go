package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	catalog Counter
	spatial Counter
	text    Counter
}

// New creates a Service. db can be nil when running memory-only.
func New(db DBPinger, catalog, spatial, text Counter) *Service {
	return &Service{db: db, catalog: catalog, spatial: spatial, text: text}
}

// Check runs health checks against all components. The index check is
// a cheap size sanity: the search indexes never hold more entries than
// the catalog, so a larger index signals drift.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	n := s.catalog.Len()
	if s.spatial.Len() > n || s.text.Len() > n {
		checks["indexes"] = CheckError
	} else {
		checks["indexes"] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
