package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionAdmin, true},
		{RoleAdmin, ActionRead, true},
		{RoleManager, ActionManage, true},
		{RoleManager, ActionAdmin, false},
		{RoleMember, ActionWrite, true},
		{RoleMember, ActionManage, false},
		{RoleMember, ActionAdmin, false},
		{Role("ghost"), ActionRead, false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.action); got != tc.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("manager"); got != RoleManager {
		t.Errorf("expected manager, got %s", got)
	}
	if got := Normalize("superuser"); got != RoleMember {
		t.Errorf("unknown roles should normalize to member, got %s", got)
	}
}
