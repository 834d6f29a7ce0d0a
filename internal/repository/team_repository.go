package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
)

// TeamRepo covers teams, team_members and project_teams. It doubles as
// the read store for the access resolver and, together with MemberRepo,
// the membership syncer.
type TeamRepo struct{ DB *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{DB: db} }

// Create inserts a team and enrolls the admin as its first member.
func (r *TeamRepo) Create(ctx context.Context, name, description string, adminID uint64) (model.Team, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Team{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO teams (name,description,admin_id) VALUES (?,?,?)", name, description, adminID)
	if err != nil {
		return model.Team{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Team{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO team_members (team_id,user_id) VALUES (?,?)", id, adminID); err != nil {
		return model.Team{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Team{}, err
	}
	return model.Team{ID: uint64(id), Name: name, Description: description, AdminID: adminID}, nil
}

// GetByID fetches a team by id.
func (r *TeamRepo) GetByID(ctx context.Context, id uint64) (model.Team, error) {
	var t model.Team
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,COALESCE(description,''),admin_id,created_at FROM teams WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.Description, &t.AdminID, &t.CreatedAt)
	return t, err
}

// ListForUser returns the teams the user belongs to.
func (r *TeamRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Team, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT t.id,t.name,COALESCE(t.description,''),t.admin_id,t.created_at "+
			"FROM teams t JOIN team_members tm ON tm.team_id=t.id "+
			"WHERE tm.user_id=? ORDER BY t.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.AdminID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a team with its member and association rows. Project
// membership retraction is the syncer's job and must run first, while
// the association rows still exist.
func (r *TeamRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"UPDATE projects SET owner_team_id=NULL WHERE owner_team_id=?",
		"DELETE FROM project_teams WHERE team_id=?",
		"DELETE FROM team_members WHERE team_id=?",
		"DELETE FROM teams WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddMember enrolls a user in a team.
func (r *TeamRepo) AddMember(ctx context.Context, teamID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO team_members (team_id,user_id) VALUES (?,?)", teamID, userID)
	if isDupKey(err) {
		return ErrDuplicateMember
	}
	return err
}

// RemoveMember drops a user from a team; sql.ErrNoRows when the user was
// not a member.
func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM team_members WHERE team_id=? AND user_id=?", teamID, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// TeamMemberWithUser carries a team membership row plus display fields.
type TeamMemberWithUser struct {
	UserID   uint64
	Username string
	Email    string
}

// ListMembers returns a team's members with their usernames.
func (r *TeamRepo) ListMembers(ctx context.Context, teamID uint64) ([]TeamMemberWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT u.id,u.username,u.email FROM team_members tm "+
			"JOIN users u ON u.id=tm.user_id WHERE tm.team_id=? ORDER BY u.id", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamMemberWithUser
	for rows.Next() {
		var m TeamMemberWithUser
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Associate links a team to a project.
func (r *TeamRepo) Associate(ctx context.Context, projectID, teamID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO project_teams (project_id,team_id) VALUES (?,?)", projectID, teamID)
	if isDupKey(err) {
		return ErrDuplicateAssociation
	}
	return err
}

// Dissociate unlinks a team from a project; sql.ErrNoRows when no
// association existed.
func (r *TeamRepo) Dissociate(ctx context.Context, projectID, teamID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM project_teams WHERE project_id=? AND team_id=?", projectID, teamID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// IsTeamMember reports whether the user currently belongs to the team.
func (r *TeamRepo) IsTeamMember(ctx context.Context, teamID, userID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM team_members WHERE team_id=? AND user_id=?", teamID, userID).Scan(&n)
	return n > 0, err
}

// TeamMemberIDs lists the user ids currently in the team.
func (r *TeamRepo) TeamMemberIDs(ctx context.Context, teamID uint64) ([]uint64, error) {
	return r.collectIDs(ctx, "SELECT user_id FROM team_members WHERE team_id=?", teamID)
}

// TeamIDsForProject lists the teams associated with a project.
func (r *TeamRepo) TeamIDsForProject(ctx context.Context, projectID uint64) ([]uint64, error) {
	return r.collectIDs(ctx, "SELECT team_id FROM project_teams WHERE project_id=?", projectID)
}

// ProjectTeamIDs is TeamIDsForProject under the access resolver's name.
func (r *TeamRepo) ProjectTeamIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	return r.TeamIDsForProject(ctx, projectID)
}

// ProjectIDsForTeam lists the projects associated with a team.
func (r *TeamRepo) ProjectIDsForTeam(ctx context.Context, teamID uint64) ([]uint64, error) {
	return r.collectIDs(ctx, "SELECT project_id FROM project_teams WHERE team_id=?", teamID)
}

// ProjectOwnerTeam returns the project's owning team id, ok=false when
// unset.
func (r *TeamRepo) ProjectOwnerTeam(ctx context.Context, projectID uint64) (uint64, bool, error) {
	var owner sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT owner_team_id FROM projects WHERE id=? LIMIT 1", projectID).Scan(&owner)
	if err != nil {
		return 0, false, err
	}
	if !owner.Valid {
		return 0, false, nil
	}
	return uint64(owner.Int64), true, nil
}

func (r *TeamRepo) collectIDs(ctx context.Context, query string, arg uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
