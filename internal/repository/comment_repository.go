package repository

import (
	"context"
	"database/sql"

	"github.com/aryanaichra/project-tracker/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Add inserts a comment and returns its id.
func (r *CommentRepo) Add(ctx context.Context, itemID, userID uint64, body string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (item_id,user_id,body) VALUES (?,?,?)",
		itemID, userID, body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// CommentWithUser carries a comment plus the author's username.
type CommentWithUser struct {
	model.Comment
	Username string
}

// ListByItem returns an item's comments, oldest first.
func (r *CommentRepo) ListByItem(ctx context.Context, itemID uint64) ([]CommentWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT c.id,c.item_id,c.user_id,c.body,c.created_at,u.username "+
			"FROM comments c JOIN users u ON u.id=c.user_id "+
			"WHERE c.item_id=? ORDER BY c.id ASC", itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommentWithUser
	for rows.Next() {
		var cmt CommentWithUser
		if err := rows.Scan(&cmt.ID, &cmt.ItemID, &cmt.UserID, &cmt.Body, &cmt.CreatedAt, &cmt.Username); err != nil {
			return nil, err
		}
		out = append(out, cmt)
	}
	return out, rows.Err()
}
