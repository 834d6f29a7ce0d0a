// Package repository implements data access over MySQL. Sentinel errors
// defined here let handlers distinguish failure scenarios without
// parsing driver messages: duplicates map to HTTP 409, absent rows are
// reported as sql.ErrNoRows throughout.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registration hits the unique email or
// username constraint.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateMember is returned when a membership row already exists
// for the (project, user) pair. Handlers translate this into 409.
var ErrDuplicateMember = errors.New("already a project member")

// ErrDuplicateAssociation is returned when a project<->team or
// team<->user link already exists. Handlers translate this into 409.
var ErrDuplicateAssociation = errors.New("association already exists")

// isDupKey reports whether the driver error is MySQL 1062 (duplicate
// entry on a unique key).
func isDupKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
