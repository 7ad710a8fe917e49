package workflow

import "testing"

func TestResolveApprover_ExactRoleMatch(t *testing.T) {
	sg := suggest(RoleHR, "HR", "test")
	cands := []Candidate{
		{ID: "1", Role: "admin"},
		{ID: "2", Role: "hr", Name: "Rhea"},
	}
	got := ResolveApprover(sg, cands, "")
	if got == nil || got.ID != "2" {
		t.Fatalf("expected candidate 2, got %+v", got)
	}
}

func TestResolveApprover_SynonymLabelMatch(t *testing.T) {
	sg := suggest(RoleVPApprover, "Vice President", "test")
	cands := []Candidate{
		{ID: "1", Role: "exec", RoleLabel: "Vice President for External Affairs"},
	}
	got := ResolveApprover(sg, cands, "")
	if got == nil || got.ID != "1" {
		t.Fatalf("expected vice president label match, got %+v", got)
	}
}

func TestResolveApprover_PreferredAdminWins(t *testing.T) {
	sg := suggest(RoleAdmin, "Administrator", "test")
	cands := []Candidate{
		{ID: "1", Role: "admin", Name: "Someone Else"},
		{ID: "2", Role: "admin", Name: "T. Mercado", Email: "tmercado@campus.edu"},
	}
	got := ResolveApprover(sg, cands, "mercado")
	if got == nil || got.ID != "2" {
		t.Fatalf("expected preferred admin, got %+v", got)
	}

	// Without a configured preference, first match wins.
	got = ResolveApprover(sg, cands, "")
	if got == nil || got.ID != "1" {
		t.Fatalf("expected first admin, got %+v", got)
	}
}

func TestResolveApprover_NoCandidates(t *testing.T) {
	sg := suggest(RoleComptroller, "Comptroller", "test")
	if got := ResolveApprover(sg, []Candidate{{ID: "1", Role: "hr"}}, ""); got != nil {
		t.Fatalf("expected nil (broadcast fallback), got %+v", got)
	}
	if got := ResolveApprover(nil, []Candidate{{ID: "1", Role: "hr"}}, ""); got != nil {
		t.Fatalf("nil suggestion must resolve to nil")
	}
}
