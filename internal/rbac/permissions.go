// Package rbac holds the static role/permission table. The table is the
// single source of truth for which project roles may perform which
// actions; nothing outside this package re-derives or duplicates it.
package rbac

import "strings"

// Canonical project-scoped role names.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
	RoleViewer  = "viewer"
)

// Action names gated by the permission table.
const (
	ActionViewTasks           = "view_tasks"
	ActionCreateTask          = "create_task"
	ActionEditAnyTask         = "edit_any_task"
	ActionEditOwnTask         = "edit_own_task"
	ActionDeleteAnyTask       = "delete_any_task"
	ActionDeleteOwnTask       = "delete_own_task"
	ActionManageProject       = "manage_project"
	ActionAddRemoveMembers    = "add_remove_members"
	ActionChangeRoles         = "change_roles"
	ActionViewProjectSettings = "view_project_settings"
	ActionDeleteProject       = "delete_project"
	ActionTransferAdmin       = "transfer_admin"
)

// rolePermissions maps each action to the set of roles allowed to perform
// it. Actions absent from the map are allowed for nobody.
var rolePermissions = map[string]map[string]bool{
	ActionViewTasks:           roles(RoleAdmin, RoleManager, RoleMember, RoleViewer),
	ActionCreateTask:          roles(RoleAdmin, RoleManager, RoleMember),
	ActionEditAnyTask:         roles(RoleAdmin, RoleManager),
	ActionEditOwnTask:         roles(RoleAdmin, RoleManager, RoleMember),
	ActionDeleteAnyTask:       roles(RoleAdmin, RoleManager),
	ActionDeleteOwnTask:       roles(RoleAdmin, RoleManager, RoleMember),
	ActionManageProject:       roles(RoleAdmin, RoleManager),
	ActionAddRemoveMembers:    roles(RoleAdmin, RoleManager),
	ActionChangeRoles:         roles(RoleAdmin, RoleManager),
	ActionViewProjectSettings: roles(RoleAdmin, RoleManager, RoleMember, RoleViewer),
	ActionDeleteProject:       roles(RoleAdmin),
	ActionTransferAdmin:       roles(RoleAdmin),
}

func roles(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// HasPermission reports whether a role may perform an action. Unknown
// actions and unknown roles are denied.
func HasPermission(role, action string) bool {
	return rolePermissions[action][role]
}

// ValidRole reports whether the given string is one of the canonical
// role names. Used when assigning or changing membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMember, RoleViewer:
		return true
	}
	return false
}

// OwnAction derives the narrower own-resource action from a blanket one
// by substituting "_any_" with "_own_" (edit_any_task -> edit_own_task).
// It returns "" when the action has no own-resource variant.
func OwnAction(action string) string {
	if !strings.Contains(action, "_any_") {
		return ""
	}
	own := strings.Replace(action, "_any_", "_own_", 1)
	if _, ok := rolePermissions[own]; !ok {
		return ""
	}
	return own
}
