package workflow

import "github.com/shopspring/decimal"

// ExecRoute disambiguates who within the executive pool must act once
// the sequencer lands on the executive stage. It never changes the
// stage itself.
type ExecRoute string

const (
	RouteVP          ExecRoute = "vp"
	RoutePresident   ExecRoute = "president"
	RouteAutoApprove ExecRoute = "auto_approve"
)

// presidentialBudgetThreshold: budgets strictly above this amount force
// presidential sign-off.
var presidentialBudgetThreshold = decimal.NewFromInt(50000)

// RouteExecutive decides the executive level for a request. Total over
// its whole input domain:
//   - a president's own submission never needs another countersignature;
//   - a VP's submission escalates to the president (peers may not close it);
//   - budget above the threshold or an international trip forces the
//     president regardless of requester seniority (OR-combined);
//   - everything else goes to a VP.
func RouteExecutive(s Snapshot, requester RoleCapabilities) ExecRoute {
	if requester.ExecType == ExecPresident {
		return RouteAutoApprove
	}
	if requester.ExecType == ExecVP {
		return RoutePresident
	}
	if s.TotalBudget.GreaterThan(presidentialBudgetThreshold) || s.IsInternational {
		return RoutePresident
	}
	return RouteVP
}
