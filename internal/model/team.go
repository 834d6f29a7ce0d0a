package model

import "time"

// Team is a user group in the `teams` table. AdminID identifies the team
// administrator who may manage members and project associations.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – team name.
//  Description – free-form description.
//  AdminID     – team administrator.
//  CreatedAt   – creation timestamp.
type Team struct {
	ID          uint64    // teams.id
	Name        string    // teams.name
	Description string    // teams.description
	AdminID     uint64    // teams.admin_id
	CreatedAt   time.Time // teams.created_at
}

// TeamMember links a user to a team.
//
// Fields:
//  TeamID    – team identifier.
//  UserID    – member user.
//  CreatedAt – when the user joined.
type TeamMember struct {
	TeamID    uint64    // team_members.team_id
	UserID    uint64    // team_members.user_id
	CreatedAt time.Time // team_members.created_at
}

// ProjectTeam links a team to a project. Every member of an associated
// team gains implicit project membership through fan-out.
//
// Fields:
//  ProjectID – associated project.
//  TeamID    – associated team.
//  CreatedAt – when the association was made.
type ProjectTeam struct {
	ProjectID uint64    // project_teams.project_id
	TeamID    uint64    // project_teams.team_id
	CreatedAt time.Time // project_teams.created_at
}
