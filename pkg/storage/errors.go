package storage

import "errors"

// ErrScopeMismatch is returned when a tenant-scoped operation is
// invoked with a context bound to a different project than the one it
// targets.
var ErrScopeMismatch = errors.New("tenant scope does not match target project")
