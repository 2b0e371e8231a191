package utils

import "sync/atomic"

// transID is the coordinator-global monotonic counter, allocated under
// an atomic add per §5 ("the monotonic transID counter is
// coordinator-global and must be allocated under a lock"). It only
// correlates log records across a crash; it never gates message
// processing (§4.4).
var transID uint64

// NextTransID allocates the next monotonically increasing transaction id.
func NextTransID() uint64 {
	return atomic.AddUint64(&transID, 1)
}
