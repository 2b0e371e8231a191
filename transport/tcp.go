package transport

import (
	"bufio"
	"collagefc/configs"
	"io"
	"net"
	"sync"
	"time"
)

// inbound pairs a received payload with the address that sent it.
type inbound struct {
	from    string
	payload []byte
}

// TCP is the raw point-to-point substrate every node in the system
// runs: one listener per node, newline-delimited frames, connections
// dialed lazily and cached for reuse. Adapted from the teacher's
// Commu/Comm accept-loop pattern (network/coordinator/conn.go,
// network/participant/conn.go): accept in a loop, one goroutine per
// live connection reading length-by-newline frames into a shared
// channel that Receive drains.
type TCP struct {
	listener net.Listener
	connMap  sync.Map // address -> net.Conn
	inbox    chan inbound
	sem      chan struct{}
	done     chan struct{}
	closeOne sync.Once
}

// NewTCP binds a listener on address and begins accepting connections.
func NewTCP(address string) *TCP {
	listener, err := net.Listen("tcp", address)
	configs.CheckError(err)
	t := &TCP{
		listener: listener,
		inbox:    make(chan inbound, 256),
		sem:      make(chan struct{}, configs.MaxConnectionHandler),
		done:     make(chan struct{}),
	}
	go t.acceptLoop()
	return t
}

func (t *TCP) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				configs.DPrintf("accept error: %v", err)
				return
			}
		}
		t.sem <- struct{}{}
		go func() {
			defer func() { <-t.sem }()
			t.readLoop(conn)
		}()
	}
}

func (t *TCP) readLoop(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 1 {
			payload := line[:len(line)-1]
			t.inbox <- inbound{from: conn.RemoteAddr().String(), payload: payload}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			configs.DPrintf("read error: %v", err)
			return
		}
	}
}

// Send dials (or reuses) a connection to address and writes payload,
// best-effort: a failed write is logged and dropped, never surfaced,
// since the protocol already tolerates message loss (§7).
func (t *TCP) Send(address string, payload []byte) {
	conn, err := t.dial(address)
	if err != nil {
		configs.Warn(false, "send to "+address+" failed: "+err.Error())
		return
	}
	framed := append(append([]byte{}, payload...), '\n')
	conn.SetWriteDeadline(time.Now().Add(configs.WriteDeadline))
	if _, err := conn.Write(framed); err != nil {
		configs.Warn(false, "write to "+address+" failed: "+err.Error())
		t.connMap.Delete(address)
		conn.Close()
	}
}

func (t *TCP) dial(address string) (net.Conn, error) {
	if cur, ok := t.connMap.Load(address); ok {
		return cur.(net.Conn), nil
	}
	conn, err := net.DialTimeout("tcp", address, configs.DialTimeout)
	if err != nil {
		return nil, err
	}
	actual, loaded := t.connMap.LoadOrStore(address, conn)
	if loaded {
		conn.Close()
		return actual.(net.Conn), nil
	}
	return conn, nil
}

// Receive blocks until the next inbound payload, or returns ok=false
// once Close has been called.
func (t *TCP) Receive() (string, []byte, bool) {
	select {
	case m, ok := <-t.inbox:
		if !ok {
			return "", nil, false
		}
		return m.from, m.payload, true
	case <-t.done:
		return "", nil, false
	}
}

// Close stops accepting new connections and unblocks any pending Receive.
func (t *TCP) Close() {
	t.closeOne.Do(func() {
		close(t.done)
		t.listener.Close()
		t.connMap.Range(func(_, v interface{}) bool {
			v.(net.Conn).Close()
			return true
		})
	})
}
