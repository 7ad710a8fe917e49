package workflow

import "testing"

func TestCanApprove_StageAuthorities(t *testing.T) {
	cases := []struct {
		name  string
		user  RoleCapabilities
		stage Stage
		snap  Snapshot
		want  bool
	}{
		{"head at head stage", RoleCapabilities{IsHead: true}, StagePendingHead, Snapshot{}, true},
		{"head at parent head stage", RoleCapabilities{IsHead: true}, StagePendingParentHead, Snapshot{}, true},
		{"faculty at head stage", RoleCapabilities{}, StagePendingHead, Snapshot{}, false},
		{"admin at admin stage", RoleCapabilities{IsAdmin: true}, StagePendingAdmin, Snapshot{}, true},
		{"head at admin stage", RoleCapabilities{IsHead: true}, StagePendingAdmin, Snapshot{}, false},
		{"comptroller", RoleCapabilities{IsComptroller: true}, StagePendingComptroller, Snapshot{}, true},
		{"hr", RoleCapabilities{IsHR: true}, StagePendingHR, Snapshot{}, true},
		{"non-exec at exec stage", RoleCapabilities{}, StagePendingExec, Snapshot{}, false},
		{
			"vp at vp-level exec stage",
			RoleCapabilities{IsExecutive: true, ExecType: ExecVP},
			StagePendingExec, Snapshot{ExecLevel: RouteVP}, true,
		},
		{
			"president at vp-level exec stage",
			RoleCapabilities{IsExecutive: true, ExecType: ExecPresident},
			StagePendingExec, Snapshot{ExecLevel: RouteVP}, true,
		},
		{
			"vp at president-level exec stage",
			RoleCapabilities{IsExecutive: true, ExecType: ExecVP},
			StagePendingExec, Snapshot{ExecLevel: RoutePresident}, false,
		},
		{
			"president at president-level exec stage",
			RoleCapabilities{IsExecutive: true, ExecType: ExecPresident},
			StagePendingExec, Snapshot{ExecLevel: RoutePresident}, true,
		},
		{
			"exec with empty level treated as vp-level",
			RoleCapabilities{IsExecutive: true, ExecType: ExecVP},
			StagePendingExec, Snapshot{}, true,
		},
		{"terminal stage", RoleCapabilities{IsAdmin: true}, StageApproved, Snapshot{}, false},
	}

	for _, tc := range cases {
		if got := CanApprove(tc.user, tc.stage, tc.snap); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
