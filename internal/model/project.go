package model

import "time"

// Project represents a row in the `projects` table. AdminID mirrors the
// legacy single-admin column; it is rewritten on admin transfer but access
// decisions always go through the project_members table instead.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – project name.
//  Description – free-form description.
//  AdminID     – legacy admin reference (informational only).
//  OwnerTeamID – team designated as the owning team (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Project struct {
	ID          uint64    // projects.id
	Name        string    // projects.name
	Description string    // projects.description
	AdminID     uint64    // projects.admin_id
	OwnerTeamID *uint64   // projects.owner_team_id (nullable)
	CreatedAt   time.Time // projects.created_at
	UpdatedAt   time.Time // projects.updated_at
}

// Membership provenance values for ProjectMember.Source. A row created by
// team association fan-out is "team" and may be retracted when the
// association goes away; a row granted explicitly is "direct" and only an
// explicit removal deletes it.
const (
	MemberSourceDirect = "direct"
	MemberSourceTeam   = "team"
)

// ProjectMember joins a user to a project with a role. This table is the
// authoritative source for per-project authorization.
//
// Fields:
//  ProjectID – project the membership belongs to.
//  UserID    – member user.
//  Role      – project-scoped role name (admin, manager, member, viewer).
//  Source    – provenance of the row (direct grant or team fan-out).
//  CreatedAt – creation timestamp.
type ProjectMember struct {
	ProjectID uint64    // project_members.project_id
	UserID    uint64    // project_members.user_id
	Role      string    // project_members.role
	Source    string    // project_members.source
	CreatedAt time.Time // project_members.created_at
}

// Column is a board column items are grouped under.
//
// Fields:
//  ID        – primary key identifier.
//  ProjectID – owning project.
//  Name      – column title (e.g. "To Do").
//  Position  – ordering index on the board.
type Column struct {
	ID        uint64 // board_columns.id
	ProjectID uint64 // board_columns.project_id
	Name      string // board_columns.name
	Position  uint32 // board_columns.position
}
