// Package transport is the messaging substrate the core consumes per
// §6: unreliable, point-to-point, addressed by string. It is
// deliberately out of the protocol's scope (§1) — the core only relies
// on Send/Receive/Oracle's contracts, never on how they are realized.
package transport

// Substrate is the contract the 2PC core depends on. Send is
// non-blocking/fire-and-forget; it may silently drop or duplicate.
// Receive blocks for the next inbound payload. Close releases any
// held resources (listening socket, open connections).
type Substrate interface {
	Send(address string, payload []byte)
	Receive() (sender string, payload []byte, ok bool)
	Close()
}

// Oracle is the participant's user-approval callback: given the
// artifact content and the sources a PREPARE asks it to consume, it
// returns whether to vote to commit. Any concrete approval mechanism
// (always-yes, CLI prompt, policy check) satisfies this signature.
type Oracle func(content []byte, sources []string) bool
