package utils

import "errors"

// Sentinel errors for the participant and coordinator state machines.
// None of these represent process-fatal faults. Only
// ErrDuplicateFingerprint is returned by the code in this repository;
// the participant answers a missing or locked source with a VOTEABORT
// reply, and the coordinator treats an elapsed window or an unknown
// fingerprint internally, without producing any of the others.
var (
	// ErrLockTimeout names a lockSet acquisition that could not be
	// obtained before its deadline.
	ErrLockTimeout = errors.New("get lock timeout")
	// ErrTimeout covers the voting/retransmission window elapsing.
	ErrTimeout = errors.New("timeout")
	// ErrSourceMissing names a PREPARE for a local file that does not
	// exist on the participant's filesystem.
	ErrSourceMissing = errors.New("source file missing")
	// ErrSourceLocked names a PREPARE for a file already promised to
	// another live transaction.
	ErrSourceLocked = errors.New("source file already locked")
	// ErrUnknownTransaction names a message for a fingerprint with no
	// live transaction (duplicate/late delivery).
	ErrUnknownTransaction = errors.New("unknown transaction")
	// ErrDuplicateFingerprint is returned by StartCommit when the
	// fileName is already in flight.
	ErrDuplicateFingerprint = errors.New("fingerprint already in flight")
)
