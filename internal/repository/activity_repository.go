package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
)

// ActivityRepo persists the append-only audit trail. There is no update
// or delete path on purpose.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Append writes one audit row.
func (r *ActivityRepo) Append(ctx context.Context, entry model.ActivityLog) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO activity_logs (item_id,project_id,user_id,action,details) VALUES (?,?,?,?,?)",
		entry.ItemID, entry.ProjectID, entry.UserID, entry.Action, entry.Details)
	return err
}

// ActivityWithUser carries an audit row plus the actor's username for
// display.
type ActivityWithUser struct {
	model.ActivityLog
	Username string
}

// ListByItem returns an item's audit trail, oldest first.
func (r *ActivityRepo) ListByItem(ctx context.Context, itemID uint64) ([]ActivityWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT a.id,a.item_id,a.project_id,a.user_id,a.action,a.details,a.created_at,u.username "+
			"FROM activity_logs a JOIN users u ON u.id=a.user_id "+
			"WHERE a.item_id=? ORDER BY a.id ASC", itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// ListByProject returns a project's recent activity feed, newest first.
// The filter runs on the denormalized project_id column, not a join on
// items, so rows for deleted items remain part of the feed.
func (r *ActivityRepo) ListByProject(ctx context.Context, projectID uint64, limit int) ([]ActivityWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT a.id,a.item_id,a.project_id,a.user_id,a.action,a.details,a.created_at,u.username "+
			"FROM activity_logs a JOIN users u ON u.id=a.user_id "+
			"WHERE a.project_id=? ORDER BY a.id DESC LIMIT ?", projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

func collectActivities(rows *sql.Rows) ([]ActivityWithUser, error) {
	var out []ActivityWithUser
	for rows.Next() {
		var a ActivityWithUser
		if err := rows.Scan(&a.ID, &a.ItemID, &a.ProjectID, &a.UserID, &a.Action, &a.Details, &a.CreatedAt, &a.Username); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
