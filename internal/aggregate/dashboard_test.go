package aggregate

import (
	"errors"
	"testing"

	"shitdash/internal/domain"
	"shitdash/internal/window"
)

func TestComputeDashboard_AllDomainsReady(t *testing.T) {
	snap := &domain.Snapshot{
		Staking: []*domain.StakingRecord{
			{Timestamp: "2024-03-05 10:00:00", Address: "walletA", Amount: 10, Action: domain.ActionStake},
		},
	}

	d, err := ComputeDashboard(snap, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("ComputeDashboard: %v", err)
	}
	if d.StartDate != "2024-03-04" || d.EndDate != "2024-03-10" {
		t.Errorf("range echoed back wrong: %s..%s", d.StartDate, d.EndDate)
	}

	if len(d.Domains) != len(domain.DomainNames) {
		t.Fatalf("expected %d domains, got %d", len(domain.DomainNames), len(d.Domains))
	}
	for _, name := range domain.DomainNames {
		state, ok := d.Domains[name]
		if !ok {
			t.Errorf("domain %s missing", name)
			continue
		}
		// Empty collections are valid inputs: ready with empty payloads.
		if state.Status != domain.StatusReady {
			t.Errorf("domain %s status = %s (%s), want ready", name, state.Status, state.Error)
		}
		if state.Result == nil {
			t.Errorf("domain %s has no result payload", name)
		}
	}
}

func TestComputeDashboard_InvalidRange(t *testing.T) {
	_, err := ComputeDashboard(&domain.Snapshot{}, "2024-03-10", "2024-03-04")
	if !errors.Is(err, window.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestComputeDomain_UnknownDomain(t *testing.T) {
	_, err := ComputeDomain("unknown", &domain.Snapshot{}, "2024-03-04", "2024-03-10")
	if err == nil {
		t.Fatalf("expected error for unknown domain")
	}
}

func TestSafeComputeDomain_AbsorbsFailures(t *testing.T) {
	state := SafeComputeDomain(domain.DomainStaking, &domain.Snapshot{}, "2024-03-10", "2024-03-04")
	if state.Status != domain.StatusFailed {
		t.Errorf("invalid range status = %s, want failed", state.Status)
	}
	if state.Error == "" {
		t.Errorf("failed state must carry the error text")
	}

	// A nil snapshot dereference inside an aggregator must surface as a
	// failed state, never as a process panic.
	state = SafeComputeDomain(domain.DomainStaking, nil, "2024-03-04", "2024-03-10")
	if state.Status != domain.StatusFailed {
		t.Errorf("nil snapshot status = %s, want failed", state.Status)
	}
}

func TestSafeComputeDomain_Ready(t *testing.T) {
	state := SafeComputeDomain(domain.DomainPOS, &domain.Snapshot{}, "2024-03-04", "2024-03-10")
	if state.Status != domain.StatusReady {
		t.Fatalf("status = %s (%s), want ready", state.Status, state.Error)
	}
	if _, ok := state.Result.(*domain.POSResult); !ok {
		t.Errorf("result type = %T, want *domain.POSResult", state.Result)
	}
}
