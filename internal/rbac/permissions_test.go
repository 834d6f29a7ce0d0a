package rbac

import "testing"

func TestHasPermissionTable(t *testing.T) {
	cases := []struct {
		role   string
		action string
		want   bool
	}{
		{RoleViewer, ActionViewTasks, true},
		{RoleViewer, ActionCreateTask, false},
		{RoleViewer, ActionViewProjectSettings, true},
		{RoleMember, ActionCreateTask, true},
		{RoleMember, ActionEditAnyTask, false},
		{RoleMember, ActionEditOwnTask, true},
		{RoleMember, ActionDeleteAnyTask, false},
		{RoleMember, ActionDeleteOwnTask, true},
		{RoleMember, ActionAddRemoveMembers, false},
		{RoleManager, ActionEditAnyTask, true},
		{RoleManager, ActionManageProject, true},
		{RoleManager, ActionChangeRoles, true},
		{RoleManager, ActionDeleteProject, false},
		{RoleManager, ActionTransferAdmin, false},
		{RoleAdmin, ActionDeleteProject, true},
		{RoleAdmin, ActionTransferAdmin, true},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.action); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestHasPermissionDefaultDeny(t *testing.T) {
	// Unknown actions are allowed for nobody, whatever the role.
	for _, role := range []string{RoleAdmin, RoleManager, RoleMember, RoleViewer, "owner", ""} {
		if HasPermission(role, "launch_rockets") {
			t.Errorf("unknown action allowed for role %q", role)
		}
	}
	// Unknown roles get nothing, even for permissive actions.
	for _, role := range []string{"owner", "superuser", "ADMIN", ""} {
		if HasPermission(role, ActionViewTasks) {
			t.Errorf("unknown role %q allowed to view tasks", role)
		}
	}
}

func TestOwnAction(t *testing.T) {
	cases := []struct {
		action string
		want   string
	}{
		{ActionEditAnyTask, ActionEditOwnTask},
		{ActionDeleteAnyTask, ActionDeleteOwnTask},
		{ActionCreateTask, ""},
		{ActionManageProject, ""},
		{"view_any_thing", ""}, // substitution result must exist in the table
	}
	for _, tc := range cases {
		if got := OwnAction(tc.action); got != tc.want {
			t.Errorf("OwnAction(%q) = %q, want %q", tc.action, got, tc.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleManager, RoleMember, RoleViewer} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	for _, r := range []string{"owner", "Admin", ""} {
		if ValidRole(r) {
			t.Errorf("ValidRole(%q) = true", r)
		}
	}
}
