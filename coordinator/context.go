package coordinator

import (
	"os"
	"sync"

	"collagefc/configs"
	"collagefc/transport"
	"collagefc/utils"
	"collagefc/wire"
)

// Coordinator owns the durable log, the messaging substrate, and the
// set of live transactions, §4.1/§4.4. It has no notion of protocol
// family beyond plain 2PC: one transaction per fileName, one worker
// goroutine each.
type Coordinator struct {
	addr string
	sub  transport.Substrate
	log  *CoordinatorLog

	active sync.Map // fileName (string) -> *Transaction
}

// NewCoordinator opens the durable log at configs.CoordinatorLogName
// and returns a Coordinator bound to sub. Start Dispatch, then call
// Recover to fold any transactions left pending by a prior crash;
// Recover only returns once those transactions have collected their
// ACKs, which reach them through Dispatch.
func NewCoordinator(addr string, sub transport.Substrate) *Coordinator {
	return &Coordinator{
		addr: addr,
		sub:  sub,
		log:  OpenCoordinatorLog(configs.CoordinatorLogName),
	}
}

func (c *Coordinator) substrate() transport.Substrate { return c.sub }

func (c *Coordinator) writeArtifact(fileName string, content []byte) error {
	return os.WriteFile(fileName, content, 0o644)
}

// StartCommit is the submission API, §6: it begins a new transaction
// for fileName built from content and sources, grouping sources by
// participant address. It returns ErrDuplicateFingerprint if fileName
// already names a live transaction.
func (c *Coordinator) StartCommit(fileName string, content []byte, sources []string) error {
	if _, exists := c.active.Load(fileName); exists {
		return utils.ErrDuplicateFingerprint
	}
	txn := newTransactionNEWC(c, fileName, content, sources)
	if _, loaded := c.active.LoadOrStore(fileName, txn); loaded {
		return utils.ErrDuplicateFingerprint
	}
	go txn.runNewCommit()
	return nil
}

// Dispatch runs the single receive loop, §4.5: it decodes every
// inbound payload and routes it to the live transaction named by
// msg.FileName. It returns once the substrate is closed.
func (c *Coordinator) Dispatch() {
	for {
		_, payload, ok := c.sub.Receive()
		if !ok {
			return
		}
		msg, err := wire.Decode(payload)
		if err != nil {
			configs.Warn(false, "dropping malformed message: "+err.Error())
			continue
		}
		v, ok := c.active.Load(msg.FileName)
		if !ok {
			configs.DPrintf("message for unknown fingerprint %s dropped", msg.FileName)
			continue
		}
		v.(*Transaction).deliver(msg)
	}
}

func (c *Coordinator) Close() {
	c.sub.Close()
	c.log.Close()
}
