package storage

import "errors"

// Sentinel errors returned by catalog operations. Callers match them with
// [errors.Is].
var (
	// ErrNotFound is returned when reading a blob under a key that was never
	// written (or has been deleted).
	ErrNotFound = errors.New("blob not found")

	// ErrMalformedIndex is returned when the index blob cannot be parsed as a
	// JSON array of strings.
	ErrMalformedIndex = errors.New("malformed catalog index")

	// ErrReservedKey is returned when a caller tries to write the index key
	// directly; the index is maintained by the catalog itself.
	ErrReservedKey = errors.New("key is reserved for the catalog index")

	// ErrCorruptAuditLog is returned at load time when the persisted audit
	// chain fails hash validation.
	ErrCorruptAuditLog = errors.New("audit log failed chain validation")
)
