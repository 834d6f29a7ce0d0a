// Package activity computes field-level change descriptions for items
// and records them as append-only audit rows.
package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aryanaichra/project-tracker/internal/model"
)

// DateLayout is the canonical textual form dates are compared and
// rendered in. Two due dates are equal iff their canonical forms match.
const DateLayout = "2006-01-02"

// ItemPatch is the explicit whitelist of updatable item fields. A nil
// field means "leave unchanged". AssigneeID uses zero to clear the
// assignee, since a membership id of zero is never valid.
type ItemPatch struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Priority    *string
	ColumnID    *uint64
	AssigneeID  *uint64
	DueDate     *time.Time
}

// Apply writes the patch onto the item in place. Only whitelisted
// fields can ever change; everything else on the row is untouchable
// through this path.
func (p ItemPatch) Apply(it *model.Item) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Type != nil {
		it.Type = *p.Type
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.ColumnID != nil {
		it.ColumnID = *p.ColumnID
	}
	if p.AssigneeID != nil {
		if *p.AssigneeID == 0 {
			it.AssigneeID = nil
		} else {
			v := *p.AssigneeID
			it.AssigneeID = &v
		}
	}
	if p.DueDate != nil {
		v := *p.DueDate
		it.DueDate = &v
	}
}

// Diff returns one "field: old -> new" descriptor per tracked field the
// patch actually changes, in a fixed field order. An empty slice means
// the patch is a no-op and nothing should be recorded.
func Diff(old model.Item, p ItemPatch) []string {
	var changes []string
	add := func(field, before, after string) {
		changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, before, after))
	}

	if p.Title != nil && *p.Title != old.Title {
		add("title", old.Title, *p.Title)
	}
	if p.Description != nil && *p.Description != old.Description {
		add("description", old.Description, *p.Description)
	}
	if p.Type != nil && *p.Type != old.Type {
		add("type", old.Type, *p.Type)
	}
	if p.Status != nil && *p.Status != old.Status {
		add("status", old.Status, *p.Status)
	}
	if p.Priority != nil && *p.Priority != old.Priority {
		add("priority", old.Priority, *p.Priority)
	}
	if p.ColumnID != nil && *p.ColumnID != old.ColumnID {
		add("column_id", strconv.FormatUint(old.ColumnID, 10), strconv.FormatUint(*p.ColumnID, 10))
	}
	if p.AssigneeID != nil {
		before := formatAssignee(old.AssigneeID)
		var after string
		if *p.AssigneeID == 0 {
			after = formatAssignee(nil)
		} else {
			after = strconv.FormatUint(*p.AssigneeID, 10)
		}
		if before != after {
			add("assignee_id", before, after)
		}
	}
	if p.DueDate != nil {
		before := formatDate(old.DueDate)
		after := p.DueDate.Format(DateLayout)
		if before != after {
			add("due_date", before, after)
		}
	}
	return changes
}

// Details joins change descriptors into the stored details string.
func Details(changes []string) string {
	return strings.Join(changes, "; ")
}

func formatAssignee(id *uint64) string {
	if id == nil {
		return "unassigned"
	}
	return strconv.FormatUint(*id, 10)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(DateLayout)
}
