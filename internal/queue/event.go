// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// ActivityRecordedEvent is published after an audit row has been
// committed for an item mutation. It carries enough context for
// downstream consumers (notification fan-out, analytics) to act without
// querying the primary database. Delivery beyond the broker is out of
// scope here; the bundled consumer only writes a log line.
type ActivityRecordedEvent struct {
	ItemID     uint64 `json:"item_id"`
	ProjectID  uint64 `json:"project_id"`
	UserID     uint64 `json:"user_id"`
	Action     string `json:"action"` // created | updated | deleted
	Details    string `json:"details"`
	RecordedAt string `json:"recorded_at"`
}
