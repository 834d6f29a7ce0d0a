// Package membership keeps project membership rows in step with team
// associations. Associating a team with a project grants every team
// member an implicit membership row; removing the association (or a
// team member) retracts rows only for users with no remaining path —
// access is the union of all paths, never double-subtracted.
package membership

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

// Store is the persistence view the syncer operates through. The team
// and member repositories satisfy it; tests substitute fakes.
type Store interface {
	// TeamMemberIDs lists the user ids currently in the team.
	TeamMemberIDs(ctx context.Context, teamID uint64) ([]uint64, error)
	// TeamIDsForProject lists teams currently associated with the project.
	TeamIDsForProject(ctx context.Context, projectID uint64) ([]uint64, error)
	// ProjectIDsForTeam lists projects currently associated with the team.
	ProjectIDsForTeam(ctx context.Context, teamID uint64) ([]uint64, error)
	// IsTeamMember reports whether a user currently belongs to a team.
	IsTeamMember(ctx context.Context, teamID, userID uint64) (bool, error)
	// GetMember returns the membership row, sql.ErrNoRows when absent.
	GetMember(ctx context.Context, projectID, userID uint64) (model.ProjectMember, error)
	// UpsertTeamMember inserts a team-sourced membership row with the
	// given role unless a row already exists; an existing row (whatever
	// its role or source) is left untouched, so reruns are idempotent
	// and explicit grants are never downgraded.
	UpsertTeamMember(ctx context.Context, projectID, userID uint64, role string) error
	// DeleteMember removes the membership row if present.
	DeleteMember(ctx context.Context, projectID, userID uint64) error
}

// Syncer runs the fan-out. All operations are idempotent: re-running
// after a partial failure converges on the same membership set.
type Syncer struct {
	Store Store
}

// ProjectAssociated backfills a member-role row for every current team
// member after a team<->project association is created.
func (s *Syncer) ProjectAssociated(ctx context.Context, teamID, projectID uint64) error {
	users, err := s.Store.TeamMemberIDs(ctx, teamID)
	if err != nil {
		return err
	}
	for _, uid := range users {
		if err := s.Store.UpsertTeamMember(ctx, projectID, uid, rbac.RoleMember); err != nil {
			return err
		}
	}
	return nil
}

// ProjectDissociated retracts memberships that were held only through
// the removed association. Call it after the project_teams row is gone;
// the remaining associations then define the surviving paths. A row is
// kept when it was granted directly, or when any still-associated team
// contains the user.
func (s *Syncer) ProjectDissociated(ctx context.Context, teamID, projectID uint64) error {
	users, err := s.Store.TeamMemberIDs(ctx, teamID)
	if err != nil {
		return err
	}
	for _, uid := range users {
		if err := s.retract(ctx, projectID, uid); err != nil {
			return err
		}
	}
	return nil
}

// UserJoinedTeam backfills membership rows for every project the team
// is associated with.
func (s *Syncer) UserJoinedTeam(ctx context.Context, teamID, userID uint64) error {
	projects, err := s.Store.ProjectIDsForTeam(ctx, teamID)
	if err != nil {
		return err
	}
	for _, pid := range projects {
		if err := s.Store.UpsertTeamMember(ctx, pid, userID, rbac.RoleMember); err != nil {
			return err
		}
	}
	return nil
}

// UserLeftTeam retracts the user's team-sourced memberships in the
// team's projects. Call it after the team_members row is gone so the
// user's remaining teams define the surviving paths.
func (s *Syncer) UserLeftTeam(ctx context.Context, teamID, userID uint64) error {
	projects, err := s.Store.ProjectIDsForTeam(ctx, teamID)
	if err != nil {
		return err
	}
	for _, pid := range projects {
		if err := s.retract(ctx, pid, userID); err != nil {
			return err
		}
	}
	return nil
}

// retract deletes the membership row unless some path still grants it:
// a direct grant always survives, and a team-sourced row survives while
// any currently-associated team contains the user.
func (s *Syncer) retract(ctx context.Context, projectID, userID uint64) error {
	member, err := s.Store.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // already gone; retraction is idempotent
		}
		return err
	}
	if member.Source == model.MemberSourceDirect {
		return nil
	}
	teams, err := s.Store.TeamIDsForProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, tid := range teams {
		in, err := s.Store.IsTeamMember(ctx, tid, userID)
		if err != nil {
			return err
		}
		if in {
			return nil
		}
	}
	return s.Store.DeleteMember(ctx, projectID, userID)
}
