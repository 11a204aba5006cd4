package vault

import "errors"

// Sentinel errors returned by vault operations. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when an account has no stored record. Only a
	// missing file maps to it; any other read failure is reported as is.
	ErrNotFound = errors.New("account record was not found")

	// ErrAlreadyExists is returned when Create targets an account name that
	// already has a record.
	ErrAlreadyExists = errors.New("account record already exists")

	// ErrIndexMismatch is returned by Verify when an index entry references
	// a file that is missing or unreadable.
	ErrIndexMismatch = errors.New("vault index references a missing record file")
)
