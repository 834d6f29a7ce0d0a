package activity

import (
	"context"
	"log"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/queue"
)

// Store is the append-only sink for audit rows.
type Store interface {
	Append(ctx context.Context, entry model.ActivityLog) error
}

// Publisher forwards a recorded event to the message broker. It is
// optional; a nil publisher simply skips the broker.
type Publisher func(ctx context.Context, event queue.ActivityRecordedEvent) error

// Recorder appends audit rows after mutations commit. Recording is
// deliberately weaker than the mutation itself: a failed append (or a
// failed publish) is logged and swallowed so it can never roll back or
// fail a mutation that already succeeded. Callers must therefore only
// invoke the recorder after their own write has committed.
type Recorder struct {
	Store   Store
	Publish Publisher
}

// Record appends exactly one audit row for a logical create/update/
// delete event on an item, then emits a broker event. One event, one
// row — never one row per changed field.
func (r *Recorder) Record(ctx context.Context, item model.Item, actorID uint64, action, details string) {
	if r == nil || r.Store == nil {
		return
	}
	entry := model.ActivityLog{
		ItemID:    item.ID,
		ProjectID: item.ProjectID,
		UserID:    actorID,
		Action:    action,
		Details:   details,
	}
	if err := r.Store.Append(ctx, entry); err != nil {
		log.Printf("activity: append failed for item %d (%s): %v", item.ID, action, err)
		return
	}
	if r.Publish == nil {
		return
	}
	event := queue.ActivityRecordedEvent{
		ItemID:    item.ID,
		ProjectID: item.ProjectID,
		UserID:    actorID,
		Action:    action,
		Details:   details,
	}
	if err := r.Publish(ctx, event); err != nil {
		// The broker is best-effort; the audit row is already durable.
		log.Printf("activity: publish failed for item %d (%s): %v", item.ID, action, err)
	}
}
