package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aryanaichra/project-tracker/internal/model"
)

type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

const itemColumns = "id,project_id,column_id,parent_id,title,COALESCE(description,''),type,status,priority,due_date,reporter_id,assignee_id,created_at,updated_at"

func scanItem(row interface{ Scan(...any) error }) (model.Item, error) {
	var (
		it       model.Item
		parent   sql.NullInt64
		due      sql.NullTime
		assignee sql.NullInt64
	)
	err := row.Scan(&it.ID, &it.ProjectID, &it.ColumnID, &parent, &it.Title, &it.Description,
		&it.Type, &it.Status, &it.Priority, &due, &it.ReporterID, &assignee, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return model.Item{}, err
	}
	if parent.Valid {
		v := uint64(parent.Int64)
		it.ParentID = &v
	}
	if due.Valid {
		v := due.Time
		it.DueDate = &v
	}
	if assignee.Valid {
		v := uint64(assignee.Int64)
		it.AssigneeID = &v
	}
	return it, nil
}

// Create inserts an item and returns it with its assigned id.
func (r *ItemRepo) Create(ctx context.Context, it model.Item) (model.Item, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO items (project_id,column_id,parent_id,title,description,type,status,priority,due_date,reporter_id,assignee_id) "+
			"VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		it.ProjectID, it.ColumnID, nullUint(it.ParentID), it.Title, it.Description,
		it.Type, it.Status, it.Priority, nullTime(it.DueDate), it.ReporterID, nullUint(it.AssigneeID))
	if err != nil {
		return model.Item{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, err
	}
	it.ID = uint64(id)
	return it, nil
}

// GetByID fetches an item by id.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (model.Item, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id=? LIMIT 1", id)
	return scanItem(row)
}

// ListByProject returns all items in a project, board order.
func (r *ItemRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Item, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE project_id=? ORDER BY column_id, id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListForUser returns items the user reported or is assigned to, across
// all projects. Used by the personal dashboard surface.
func (r *ItemRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Item, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE reporter_id=? OR assignee_id=? ORDER BY id", userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListChildren returns the subtasks of a parent item.
func (r *ItemRepo) ListChildren(ctx context.Context, parentID uint64) ([]model.Item, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE parent_id=? ORDER BY id", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]model.Item, error) {
	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update rewrites every patchable column from the given item state. The
// caller applies the whitelist patch first; this write is deliberately
// whole-row so the audit diff and the stored row cannot drift.
func (r *ItemRepo) Update(ctx context.Context, it model.Item) error {
	// RowsAffected is zero for identical values; existence was already
	// established by the guard's lookup, so affected rows are not checked.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE items SET column_id=?,title=?,description=?,type=?,status=?,priority=?,due_date=?,assignee_id=? WHERE id=?",
		it.ColumnID, it.Title, it.Description, it.Type, it.Status, it.Priority,
		nullTime(it.DueDate), nullUint(it.AssigneeID), it.ID)
	return err
}

// Delete removes an item together with its subtasks and comments.
// Activity rows are kept: the audit trail is append-only and outlives
// the item.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM comments WHERE item_id IN (SELECT id FROM items WHERE parent_id=?)",
		"DELETE FROM items WHERE parent_id=?",
		"DELETE FROM comments WHERE item_id=?",
		"DELETE FROM items WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullUint(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
