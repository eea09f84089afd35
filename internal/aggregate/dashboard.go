package aggregate

import (
	"fmt"
	"time"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

// boundaryHours maps each domain to its civil day-boundary hour.
var boundaryHours = map[domain.DomainName]int{
	domain.DomainStaking:  boundaryStaking,
	domain.DomainTS:       boundaryTS,
	domain.DomainPOS:      boundaryPOS,
	domain.DomainShitCode: boundaryShitCode,
	domain.DomainRevenue:  boundaryRevenue,
	domain.DomainDeFi:     boundaryDeFi,
}

// ComputeDomain aggregates a single domain for the inclusive calendar-date
// range, building the period with that domain's day boundary.
func ComputeDomain(name domain.DomainName, snap *domain.Snapshot, startDate, endDate string) (any, error) {
	boundary, ok := boundaryHours[name]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", name)
	}
	p, err := window.MakePeriod(startDate, endDate, boundary)
	if err != nil {
		return nil, err
	}

	switch name {
	case domain.DomainStaking:
		return ComputeStaking(snap, p), nil
	case domain.DomainTS:
		return ComputeTS(snap, p), nil
	case domain.DomainPOS:
		return ComputePOS(snap, p), nil
	case domain.DomainShitCode:
		return ComputeShitCode(snap, p), nil
	case domain.DomainRevenue:
		return ComputeRevenue(snap, p), nil
	case domain.DomainDeFi:
		return ComputeDeFi(snap, p), nil
	default:
		return nil, fmt.Errorf("unknown domain %q", name)
	}
}

// SafeComputeDomain computes one domain and absorbs any failure into a
// failed state, so one domain can never prevent the others from rendering.
func SafeComputeDomain(name domain.DomainName, snap *domain.Snapshot, startDate, endDate string) (state domain.DomainState) {
	defer func() {
		if r := recover(); r != nil {
			state = domain.DomainState{
				Status: domain.StatusFailed,
				Error:  fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	result, err := ComputeDomain(name, snap, startDate, endDate)
	if err != nil {
		return domain.DomainState{Status: domain.StatusFailed, Error: err.Error()}
	}
	return domain.DomainState{Status: domain.StatusReady, Result: result}
}

// ComputeDashboard aggregates all six domains sequentially. The range is
// validated once up front; per-domain failures are absorbed into the
// corresponding DomainState.
func ComputeDashboard(snap *domain.Snapshot, startDate, endDate string) (*domain.Dashboard, error) {
	if _, err := window.MakePeriod(startDate, endDate, 0); err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		StartDate:   startDate,
		EndDate:     endDate,
		GeneratedAt: time.Now(),
		Domains:     make(map[domain.DomainName]domain.DomainState, len(domain.DomainNames)),
	}
	for _, name := range domain.DomainNames {
		d.Domains[name] = SafeComputeDomain(name, snap, startDate, endDate)
	}
	return d, nil
}
