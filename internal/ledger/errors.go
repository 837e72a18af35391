package ledger

import "errors"

// Sentinel errors for the ledger package.
// Use errors.Is to check: errors.Is(err, ledger.ErrUnknownDrill)
var (
	// ErrUnknownDrill is returned by RecordAnswer when the key is not in
	// the configured drill key set. Catches loader/scheduler desync early;
	// orphaned records for removed drills are still retained and served.
	ErrUnknownDrill = errors.New("ledger: unknown drill key")

	// ErrWriteFailed wraps a persistence failure. The previous durable
	// state and the in-memory state are both left intact, so the caller
	// may retry the operation.
	ErrWriteFailed = errors.New("ledger: persistence write failed")
)
