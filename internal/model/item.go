package model

import "time"

// Item is an issue/task row in the `items` table. ParentID links a
// subtask to its parent; the hierarchy is exactly one level deep.
//
// Fields:
//  ID          – primary key identifier.
//  ProjectID   – owning project.
//  ColumnID    – board column the item sits in.
//  ParentID    – parent item for subtasks (nullable).
//  Title       – short summary.
//  Description – long-form description.
//  Type        – task, bug or story.
//  Status      – todo, in_progress, in_review or done.
//  Priority    – low, medium, high or critical.
//  DueDate     – optional due date (date precision only).
//  ReporterID  – user who created the item.
//  AssigneeID  – user assigned to the item (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Item struct {
	ID          uint64     // items.id
	ProjectID   uint64     // items.project_id
	ColumnID    uint64     // items.column_id
	ParentID    *uint64    // items.parent_id (nullable)
	Title       string     // items.title
	Description string     // items.description
	Type        string     // items.type
	Status      string     // items.status
	Priority    string     // items.priority
	DueDate     *time.Time // items.due_date (nullable)
	ReporterID  uint64     // items.reporter_id
	AssigneeID  *uint64    // items.assignee_id (nullable)
	CreatedAt   time.Time  // items.created_at
	UpdatedAt   time.Time  // items.updated_at
}

// Comment is a user comment attached to an item.
//
// Fields:
//  ID        – primary key identifier.
//  ItemID    – item the comment belongs to.
//  UserID    – author.
//  Body      – comment text.
//  CreatedAt – creation timestamp.
type Comment struct {
	ID        uint64    // comments.id
	ItemID    uint64    // comments.item_id
	UserID    uint64    // comments.user_id
	Body      string    // comments.body
	CreatedAt time.Time // comments.created_at
}
