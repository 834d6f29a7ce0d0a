package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aryanaichra/project-tracker/internal/model"
	"github.com/aryanaichra/project-tracker/internal/queue"
)

func strPtr(s string) *string { return &s }
func u64Ptr(v uint64) *uint64 { return &v }

func baseItem() model.Item {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assignee := uint64(7)
	return model.Item{
		ID:          100,
		ProjectID:   1,
		ColumnID:    5,
		Title:       "Fix login",
		Description: "500 on bad password",
		Type:        "bug",
		Status:      "todo",
		Priority:    "high",
		DueDate:     &due,
		ReporterID:  3,
		AssigneeID:  &assignee,
	}
}

func TestDiffNoOp(t *testing.T) {
	it := baseItem()
	// A payload identical to current state changes nothing.
	p := ItemPatch{
		Title:      strPtr("Fix login"),
		Status:     strPtr("todo"),
		AssigneeID: u64Ptr(7),
	}
	if changes := Diff(it, p); len(changes) != 0 {
		t.Errorf("no-op diff = %v, want empty", changes)
	}
	// An entirely empty patch is trivially a no-op.
	if changes := Diff(it, ItemPatch{}); len(changes) != 0 {
		t.Errorf("empty patch diff = %v, want empty", changes)
	}
}

func TestDiffMentionsExactlyChangedFields(t *testing.T) {
	it := baseItem()
	p := ItemPatch{
		Title:      strPtr("Fix login"), // unchanged
		Status:     strPtr("in_progress"),
		AssigneeID: u64Ptr(9),
	}
	changes := Diff(it, p)
	if len(changes) != 2 {
		t.Fatalf("diff = %v, want exactly 2 descriptors", changes)
	}
	details := Details(changes)
	if !strings.Contains(details, "status: todo -> in_progress") {
		t.Errorf("details %q missing status change", details)
	}
	if !strings.Contains(details, "assignee_id: 7 -> 9") {
		t.Errorf("details %q missing assignee change", details)
	}
	if strings.Contains(details, "title") {
		t.Errorf("details %q mentions unchanged title", details)
	}
}

func TestDiffDateCanonicalForm(t *testing.T) {
	it := baseItem()
	// Same calendar day at a different wall-clock time is not a change.
	sameDay := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	if changes := Diff(it, ItemPatch{DueDate: &sameDay}); len(changes) != 0 {
		t.Errorf("same-day due date diff = %v, want empty", changes)
	}
	nextDay := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	changes := Diff(it, ItemPatch{DueDate: &nextDay})
	if len(changes) != 1 || changes[0] != "due_date: 2026-03-01 -> 2026-03-02" {
		t.Errorf("due date diff = %v", changes)
	}
}

func TestDiffClearAssignee(t *testing.T) {
	it := baseItem()
	changes := Diff(it, ItemPatch{AssigneeID: u64Ptr(0)})
	if len(changes) != 1 || changes[0] != "assignee_id: 7 -> unassigned" {
		t.Errorf("clear assignee diff = %v", changes)
	}
	// Clearing an already-clear assignee is a no-op.
	it.AssigneeID = nil
	if changes := Diff(it, ItemPatch{AssigneeID: u64Ptr(0)}); len(changes) != 0 {
		t.Errorf("double clear diff = %v, want empty", changes)
	}
}

func TestApply(t *testing.T) {
	it := baseItem()
	p := ItemPatch{
		Status:     strPtr("done"),
		AssigneeID: u64Ptr(0),
		ColumnID:   u64Ptr(8),
	}
	p.Apply(&it)
	if it.Status != "done" || it.AssigneeID != nil || it.ColumnID != 8 {
		t.Errorf("apply result = %+v", it)
	}
	if it.Title != "Fix login" || it.ReporterID != 3 {
		t.Errorf("apply touched non-patched fields: %+v", it)
	}
}

type captureStore struct {
	entries []model.ActivityLog
	err     error
}

func (s *captureStore) Append(_ context.Context, e model.ActivityLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func TestRecorderAppendsOneRow(t *testing.T) {
	store := &captureStore{}
	var published []queue.ActivityRecordedEvent
	rec := &Recorder{
		Store: store,
		Publish: func(_ context.Context, ev queue.ActivityRecordedEvent) error {
			published = append(published, ev)
			return nil
		},
	}
	it := baseItem()
	rec.Record(context.Background(), it, 3, model.ActivityUpdated, "status: todo -> done")

	if len(store.entries) != 1 {
		t.Fatalf("appended %d rows, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.ItemID != 100 || e.UserID != 3 || e.Action != model.ActivityUpdated {
		t.Errorf("entry = %+v", e)
	}
	if e.ProjectID != 1 {
		t.Errorf("entry project = %d, want 1", e.ProjectID)
	}
	if len(published) != 1 || published[0].ProjectID != 1 {
		t.Errorf("published = %+v", published)
	}
}

// A deletion row must carry the project on the row itself: the item is
// gone afterwards, so the project feed cannot recover the scope through
// a join.
func TestRecorderStampsProjectOnDeletion(t *testing.T) {
	store := &captureStore{}
	rec := &Recorder{Store: store}
	it := baseItem()
	rec.Record(context.Background(), it, 3, model.ActivityDeleted, "deleted bug \"Fix login\"")

	if len(store.entries) != 1 {
		t.Fatalf("appended %d rows, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.ProjectID != it.ProjectID || e.ItemID != it.ID || e.Action != model.ActivityDeleted {
		t.Errorf("entry = %+v", e)
	}
}

func TestRecorderSwallowsFailures(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	rec := &Recorder{Store: store, Publish: func(context.Context, queue.ActivityRecordedEvent) error {
		t.Error("publish must not run when append failed")
		return nil
	}}
	// Must not panic or propagate; the triggering mutation already
	// committed and cannot be failed retroactively.
	rec.Record(context.Background(), baseItem(), 3, model.ActivityDeleted, "")

	bad := &Recorder{Store: &captureStore{}, Publish: func(context.Context, queue.ActivityRecordedEvent) error {
		return errors.New("broker down")
	}}
	bad.Record(context.Background(), baseItem(), 3, model.ActivityCreated, "")
}
