package transport

import "sync"

// MemoryNetwork is a deterministic, in-process Substrate factory used
// by tests to drive the 2PC core without real sockets. Grounded on the
// teacher's TestKit harness (network/coordinator/utils.go,
// network/participant/utils.go), which wires up an in-process cluster
// rather than separate OS processes for fast, deterministic tests.
type MemoryNetwork struct {
	mu    sync.Mutex
	nodes map[string]*memorySubstrate
}

// NewMemoryNetwork returns an empty network. Nodes join it via Bind.
func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{nodes: map[string]*memorySubstrate{}}
}

type memorySubstrate struct {
	net     *MemoryNetwork
	address string
	inbox   chan inbound
	closed  chan struct{}
}

// Bind registers address on the network and returns its Substrate.
func (n *MemoryNetwork) Bind(address string) Substrate {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := &memorySubstrate{net: n, address: address, inbox: make(chan inbound, 256), closed: make(chan struct{})}
	n.nodes[address] = s
	return s
}

func (s *memorySubstrate) Send(address string, payload []byte) {
	s.net.mu.Lock()
	dst, ok := s.net.nodes[address]
	s.net.mu.Unlock()
	if !ok {
		return
	}
	cp := append([]byte{}, payload...)
	select {
	case dst.inbox <- inbound{from: s.address, payload: cp}:
	default:
	}
}

func (s *memorySubstrate) Receive() (string, []byte, bool) {
	select {
	case m, ok := <-s.inbox:
		if !ok {
			return "", nil, false
		}
		return m.from, m.payload, true
	case <-s.closed:
		return "", nil, false
	}
}

func (s *memorySubstrate) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}
