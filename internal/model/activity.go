package model

import "time"

// Activity log action values.
const (
	ActivityCreated = "created"
	ActivityUpdated = "updated"
	ActivityDeleted = "deleted"
)

// ActivityLog is an append-only audit row in the `activity_logs` table.
// Rows are never updated or deleted once written. ProjectID is
// denormalized onto the row so the trail stays addressable by project
// after the item itself is deleted.
//
// Fields:
//  ID        – primary key identifier.
//  ItemID    – item the event concerns.
//  ProjectID – project the item belonged to when the event happened.
//  UserID    – acting user.
//  Action    – created, updated or deleted.
//  Details   – human-readable change summary ("field: old -> new; ...").
//  CreatedAt – when the event was recorded.
type ActivityLog struct {
	ID        uint64    // activity_logs.id
	ItemID    uint64    // activity_logs.item_id
	ProjectID uint64    // activity_logs.project_id
	UserID    uint64    // activity_logs.user_id
	Action    string    // activity_logs.action
	Details   string    // activity_logs.details
	CreatedAt time.Time // activity_logs.created_at
}
