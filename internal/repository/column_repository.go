package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
)

type ColumnRepo struct{ DB *sql.DB }

func NewColumnRepo(db *sql.DB) *ColumnRepo { return &ColumnRepo{DB: db} }

// ListByProject returns a project's board columns in display order.
func (r *ColumnRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Column, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,project_id,name,position FROM board_columns WHERE project_id=? ORDER BY position, id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Column
	for rows.Next() {
		var col model.Column
		if err := rows.Scan(&col.ID, &col.ProjectID, &col.Name, &col.Position); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

// Get fetches one column, scoped to the project so a column id from
// another board cannot be used.
func (r *ColumnRepo) Get(ctx context.Context, projectID, columnID uint64) (model.Column, error) {
	var col model.Column
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,project_id,name,position FROM board_columns WHERE id=? AND project_id=? LIMIT 1",
		columnID, projectID).
		Scan(&col.ID, &col.ProjectID, &col.Name, &col.Position)
	return col, err
}

// Create appends a new column at the end of the board.
func (r *ColumnRepo) Create(ctx context.Context, projectID uint64, name string) (model.Column, error) {
	var pos uint32
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position),0)+1 FROM board_columns WHERE project_id=?", projectID).Scan(&pos); err != nil {
		return model.Column{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO board_columns (project_id,name,position) VALUES (?,?,?)", projectID, name, pos)
	if err != nil {
		return model.Column{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Column{}, err
	}
	return model.Column{ID: uint64(id), ProjectID: projectID, Name: name, Position: pos}, nil
}
