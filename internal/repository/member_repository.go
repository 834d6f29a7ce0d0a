package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
)

// MemberRepo owns the project_members table — the authoritative source
// for every per-project authorization decision.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Get fetches the membership row for (project, user).
func (r *MemberRepo) Get(ctx context.Context, projectID, userID uint64) (model.ProjectMember, error) {
	var m model.ProjectMember
	err := r.DB.QueryRowContext(ctx,
		"SELECT project_id,user_id,role,source,created_at FROM project_members "+
			"WHERE project_id=? AND user_id=? LIMIT 1",
		projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.Role, &m.Source, &m.CreatedAt)
	return m, err
}

// GetMember is an alias satisfying the membership syncer's store view.
func (r *MemberRepo) GetMember(ctx context.Context, projectID, userID uint64) (model.ProjectMember, error) {
	return r.Get(ctx, projectID, userID)
}

// Add inserts a direct-grant membership row. A duplicate (project, user)
// pair fails with ErrDuplicateMember.
func (r *MemberRepo) Add(ctx context.Context, projectID, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO project_members (project_id, user_id, role, source) VALUES (?,?,?,?)",
		projectID, userID, role, model.MemberSourceDirect)
	if isDupKey(err) {
		return ErrDuplicateMember
	}
	return err
}

// UpsertTeamMember inserts a team-sourced row unless one already exists;
// an existing row keeps its role and source untouched. Used by the
// association fan-out, which must be idempotent and never downgrade an
// explicit grant.
func (r *MemberRepo) UpsertTeamMember(ctx context.Context, projectID, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO project_members (project_id, user_id, role, source) VALUES (?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE project_id=project_id",
		projectID, userID, role, model.MemberSourceTeam)
	return err
}

// ChangeRole rewrites the role and marks the row as a direct grant: an
// explicitly assigned role must survive later team retractions.
func (r *MemberRepo) ChangeRole(ctx context.Context, projectID, userID uint64, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE project_members SET role=?, source=? WHERE project_id=? AND user_id=?",
		role, model.MemberSourceDirect, projectID, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// Delete removes the membership row if present.
func (r *MemberRepo) Delete(ctx context.Context, projectID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id=? AND user_id=?",
		projectID, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// DeleteMember is the syncer-facing variant of Delete that tolerates an
// already-absent row, keeping retraction idempotent.
func (r *MemberRepo) DeleteMember(ctx context.Context, projectID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id=? AND user_id=?",
		projectID, userID)
	return err
}

// MemberWithUser pairs a membership row with display fields from users.
type MemberWithUser struct {
	UserID   uint64
	Username string
	Email    string
	Role     string
	Source   string
}

// ListByProject returns all members of a project with user details.
func (r *MemberRepo) ListByProject(ctx context.Context, projectID uint64) ([]MemberWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT pm.user_id,u.username,u.email,pm.role,pm.source "+
			"FROM project_members pm JOIN users u ON u.id=pm.user_id "+
			"WHERE pm.project_id=? ORDER BY pm.user_id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemberWithUser
	for rows.Next() {
		var m MemberWithUser
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email, &m.Role, &m.Source); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
