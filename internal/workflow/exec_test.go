package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRouteExecutive_Totality(t *testing.T) {
	execTypes := []ExecType{"", ExecVP, ExecPresident}
	budgets := []int64{0, 50000, 50001}
	intl := []bool{false, true}

	for _, et := range execTypes {
		for _, b := range budgets {
			for _, i := range intl {
				snap := Snapshot{TotalBudget: decimal.NewFromInt(b), IsInternational: i}
				roles := RoleCapabilities{IsExecutive: et != "", ExecType: et}
				got := RouteExecutive(snap, roles)
				switch got {
				case RouteVP, RoutePresident, RouteAutoApprove:
				default:
					t.Fatalf("exec_type=%q budget=%d intl=%v: unexpected route %q", et, b, i, got)
				}
			}
		}
	}
}

func TestRouteExecutive_PresidentSelfSubmission(t *testing.T) {
	roles := RoleCapabilities{IsExecutive: true, ExecType: ExecPresident}
	if got := RouteExecutive(Snapshot{}, roles); got != RouteAutoApprove {
		t.Fatalf("expected auto_approve, got %s", got)
	}
}

func TestRouteExecutive_VPEscalatesToPresident(t *testing.T) {
	roles := RoleCapabilities{IsExecutive: true, ExecType: ExecVP}
	if got := RouteExecutive(Snapshot{}, roles); got != RoutePresident {
		t.Fatalf("expected president, got %s", got)
	}
}

func TestRouteExecutive_HighBudgetForcesPresident(t *testing.T) {
	// 60,000 with no executive role still routes to the president.
	snap := Snapshot{TotalBudget: decimal.NewFromInt(60000)}
	if got := RouteExecutive(snap, RoleCapabilities{}); got != RoutePresident {
		t.Fatalf("expected president, got %s", got)
	}

	// The threshold itself is not over it.
	snap = Snapshot{TotalBudget: decimal.NewFromInt(50000)}
	if got := RouteExecutive(snap, RoleCapabilities{}); got != RouteVP {
		t.Fatalf("expected vp at exactly 50000, got %s", got)
	}
}

func TestRouteExecutive_InternationalForcesPresident(t *testing.T) {
	snap := Snapshot{IsInternational: true}
	if got := RouteExecutive(snap, RoleCapabilities{}); got != RoutePresident {
		t.Fatalf("expected president, got %s", got)
	}
}

func TestRouteExecutive_Default(t *testing.T) {
	snap := Snapshot{TotalBudget: decimal.NewFromInt(1200)}
	if got := RouteExecutive(snap, RoleCapabilities{}); got != RouteVP {
		t.Fatalf("expected vp, got %s", got)
	}
}
