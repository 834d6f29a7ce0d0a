package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/rbac"
)

type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

const projectColumns = "id,name,COALESCE(description,''),admin_id,owner_team_id,created_at,updated_at"

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var (
		p         model.Project
		ownerTeam sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.AdminID, &ownerTeam, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, err
	}
	if ownerTeam.Valid {
		v := uint64(ownerTeam.Int64)
		p.OwnerTeamID = &v
	}
	return p, nil
}

// Default board columns seeded for every new project.
var defaultColumns = []string{"To Do", "In Progress", "In Review", "Done"}

// Create inserts the project, its creator's admin membership row and the
// default board columns in one transaction, so a project can never exist
// without an admin-role member.
func (r *ProjectRepo) Create(ctx context.Context, name, description string, creatorID uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO projects (name, description, admin_id) VALUES (?,?,?)",
		name, description, creatorID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	projectID := uint64(id)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO project_members (project_id, user_id, role, source) VALUES (?,?,?,?)",
		projectID, creatorID, rbac.RoleAdmin, model.MemberSourceDirect); err != nil {
		return 0, err
	}
	for i, name := range defaultColumns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO board_columns (project_id, name, position) VALUES (?,?,?)",
			projectID, name, i); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return projectID, nil
}

// GetByID fetches a project by id.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id=? LIMIT 1", id)
	return scanProject(row)
}

// ListForUser returns the projects the user holds a membership row in.
// The legacy admin_id column deliberately plays no part here.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT p.id,p.name,COALESCE(p.description,''),p.admin_id,p.owner_team_id,p.created_at,p.updated_at "+
			"FROM projects p JOIN project_members pm ON pm.project_id=p.id "+
			"WHERE pm.user_id=? ORDER BY p.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites name and description.
func (r *ProjectRepo) Update(ctx context.Context, id uint64, name, description string) error {
	// No affected-rows check: MySQL reports zero for a value-identical
	// update and existence is the guard's concern.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET name=?, description=? WHERE id=?",
		name, description, id)
	return err
}

// SetOwnerTeam points the project at its designated owning team; zero
// clears the reference.
func (r *ProjectRepo) SetOwnerTeam(ctx context.Context, id, teamID uint64) error {
	var val sql.NullInt64
	if teamID != 0 {
		val = sql.NullInt64{Int64: int64(teamID), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET owner_team_id=? WHERE id=?", val, id)
	return err
}

// Delete removes the project and its dependent rows.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM activity_logs WHERE project_id=?",
		"DELETE FROM comments WHERE item_id IN (SELECT id FROM items WHERE project_id=?)",
		"DELETE FROM items WHERE project_id=?",
		"DELETE FROM board_columns WHERE project_id=?",
		"DELETE FROM project_members WHERE project_id=?",
		"DELETE FROM project_teams WHERE project_id=?",
		"DELETE FROM projects WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TransferAdmin hands the admin role to another member in a single
// transaction: the target's membership becomes admin, the previous
// admin-role members drop to manager, and the informational admin_id
// column follows. The target must already be a member (sql.ErrNoRows
// otherwise) — admin can only be transferred inside the project.
func (r *ProjectRepo) TransferAdmin(ctx context.Context, projectID, fromUserID, toUserID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT role FROM project_members WHERE project_id=? AND user_id=? LIMIT 1",
		projectID, toUserID).Scan(&existing)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE project_members SET role=?, source=? WHERE project_id=? AND user_id=?",
		rbac.RoleManager, model.MemberSourceDirect, projectID, fromUserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE project_members SET role=?, source=? WHERE project_id=? AND user_id=?",
		rbac.RoleAdmin, model.MemberSourceDirect, projectID, toUserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE projects SET admin_id=? WHERE id=?", toUserID, projectID); err != nil {
		return err
	}
	return tx.Commit()
}

// requireRowAffected converts a zero-row UPDATE/DELETE into
// sql.ErrNoRows so handlers can answer 404.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
