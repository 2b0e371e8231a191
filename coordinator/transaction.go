package coordinator

import (
	"sync"
	"time"

	"collagefc/configs"
	"collagefc/utils"
	"collagefc/wire"
)

// Transaction is the coordinator-side state machine for a single
// fileName, §4.4. Exactly one goroutine drives it end to end; the
// Coordinator's dispatcher hands it inbound votes/ACKs over inbox
// rather than it polling for them.
type Transaction struct {
	owner    *Coordinator
	fileName string
	transID  uint64
	content  []byte

	order     []string            // participant addresses, first-seen order
	grouped   map[string][]string // address -> its assigned source sub-list
	bySources map[string]string   // sourcesKey(sub-list) -> address

	mu    sync.Mutex
	phase uint8

	pendingAcks map[string]struct{}

	inbox chan *wire.Message
	done  chan struct{}
}

func newTransactionNEWC(owner *Coordinator, fileName string, content []byte, sources []string) *Transaction {
	order, grouped := GroupSources(sources)
	t := &Transaction{
		owner:       owner,
		fileName:    fileName,
		transID:     utils.NextTransID(),
		content:     content,
		order:       order,
		grouped:     grouped,
		phase:       configs.PhaseVoting,
		pendingAcks: map[string]struct{}{},
		inbox:       make(chan *wire.Message, 64),
		done:        make(chan struct{}),
	}
	t.bySources = buildSourcesIndex(order, grouped)
	return t
}

func newTransactionRecovery(owner *Coordinator, rec CoordinatorLogRecord, commit bool) *Transaction {
	t := &Transaction{
		owner:       owner,
		fileName:    rec.FileName,
		transID:     rec.TransID,
		order:       rec.Order,
		grouped:     rec.Grouped,
		pendingAcks: map[string]struct{}{},
		inbox:       make(chan *wire.Message, 64),
		done:        make(chan struct{}),
	}
	if commit {
		t.phase = configs.PhaseCommitted
	} else {
		t.phase = configs.PhaseAborted
	}
	t.bySources = buildSourcesIndex(t.order, t.grouped)
	return t
}

// deliver hands an inbound message to this transaction's worker. The
// inbox is large enough to absorb the burst between phases; a full
// inbox is treated the same as substrate message loss.
func (t *Transaction) deliver(msg *wire.Message) {
	select {
	case t.inbox <- msg:
	default:
	}
}

func (t *Transaction) setPhase(p uint8) {
	t.mu.Lock()
	t.phase = p
	t.mu.Unlock()
}

func (t *Transaction) addrForSources(sources []string) (string, bool) {
	addr, ok := t.bySources[sourcesKey(sources)]
	return addr, ok
}

// runNewCommit drives a freshly submitted transaction: broadcast
// PREPARE, log it, collect votes, then commit or abort.
func (t *Transaction) runNewCommit() {
	defer t.retire()
	if len(t.order) == 0 {
		t.commit(true)
		return
	}
	t.broadcast(configs.Prepare)
	t.owner.log.WritePrepare(t.transID, t.fileName, t.order, t.grouped)
	if t.collectVotes() {
		t.commit(true)
	} else {
		t.abort()
	}
}

// runRecoveryCommit resumes a transaction whose log already carries a
// commit record: the artifact is assumed already durable, so only the
// decision broadcast and ACK collection remain.
func (t *Transaction) runRecoveryCommit() {
	defer t.retire()
	t.commit(false)
}

// runRecoveryAbort resumes a transaction whose log already carries an
// abort record.
func (t *Transaction) runRecoveryAbort() {
	defer t.retire()
	t.abort()
}

func (t *Transaction) broadcast(msgType string) {
	for _, addr := range t.order {
		msg := &wire.Message{Type: msgType, FileName: t.fileName, Sources: t.grouped[addr]}
		if msgType == configs.Prepare {
			msg.Content = t.content
		}
		t.send(addr, msg)
	}
}

func (t *Transaction) send(addr string, msg *wire.Message) {
	payload, err := wire.Encode(msg)
	if err != nil {
		configs.Warn(false, "encode failed for "+t.fileName+": "+err.Error())
		return
	}
	t.owner.substrate().Send(addr, payload)
}

// collectVotes blocks until every participant has voted VOTECOMMIT, a
// single VOTEABORT arrives, or the voting window elapses, §4.4/§5.
func (t *Transaction) collectVotes() bool {
	remaining := map[string]bool{}
	for _, a := range t.order {
		remaining[a] = true
	}
	deadline := time.Now().Add(configs.VotingWindow)
	for len(remaining) > 0 {
		left := time.Until(deadline)
		if left <= 0 {
			return false
		}
		select {
		case msg := <-t.inbox:
			switch msg.Type {
			case configs.VoteAbort:
				return false
			case configs.VoteCommit:
				if addr, ok := t.addrForSources(msg.Sources); ok {
					delete(remaining, addr)
				}
			}
		case <-time.After(left):
			return false
		}
	}
	return true
}

// commit applies the COMMIT decision. writeArtifact indicates whether
// the collage artifact still needs to be produced (true for a fresh
// submission; false when resuming from a commit record already on
// disk during recovery).
func (t *Transaction) commit(writeArtifact bool) {
	if writeArtifact {
		if err := t.owner.writeArtifact(t.fileName, t.content); err != nil {
			configs.Warn(false, "artifact write failed for "+t.fileName+": "+err.Error())
			t.abort()
			return
		}
	}
	t.setPhase(configs.PhaseCommitted)
	t.owner.log.WriteCommit(t.transID, t.fileName, t.order, t.grouped)
	t.decide(configs.CommitSuc)
}

func (t *Transaction) abort() {
	t.setPhase(configs.PhaseAborted)
	t.owner.log.WriteAbort(t.transID, t.fileName, t.order, t.grouped)
	t.decide(configs.CommitFail)
}

func (t *Transaction) decide(decisionType string) {
	t.initPendingAcks()
	if len(t.order) == 0 {
		t.finish()
		return
	}
	t.broadcast(decisionType)
	t.receiveAcks(decisionType)
}

func (t *Transaction) initPendingAcks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendingAcks = make(map[string]struct{}, len(t.order))
	for _, a := range t.order {
		t.pendingAcks[a] = struct{}{}
	}
}

// receiveAcks retransmits decisionType to every participant still
// outstanding every RetransmissionWindow until all have ACKed, §4.4/§5.
func (t *Transaction) receiveAcks(decisionType string) {
	deadline := time.Now().Add(configs.RetransmissionWindow)
	for {
		t.mu.Lock()
		empty := len(t.pendingAcks) == 0
		t.mu.Unlock()
		if empty {
			break
		}
		left := time.Until(deadline)
		if left <= 0 {
			t.retransmitPending(decisionType)
			deadline = time.Now().Add(configs.RetransmissionWindow)
			continue
		}
		select {
		case msg := <-t.inbox:
			if msg.Type == configs.Ack {
				if addr, ok := t.addrForSources(msg.Sources); ok {
					t.mu.Lock()
					delete(t.pendingAcks, addr)
					t.mu.Unlock()
				}
			}
		case <-time.After(left):
			t.retransmitPending(decisionType)
			deadline = time.Now().Add(configs.RetransmissionWindow)
		}
	}
	t.finish()
}

func (t *Transaction) retransmitPending(decisionType string) {
	t.mu.Lock()
	addrs := make([]string, 0, len(t.pendingAcks))
	for a := range t.pendingAcks {
		addrs = append(addrs, a)
	}
	t.mu.Unlock()
	for _, addr := range addrs {
		msg := &wire.Message{Type: decisionType, FileName: t.fileName, Sources: t.grouped[addr]}
		t.send(addr, msg)
	}
}

func (t *Transaction) finish() {
	t.owner.log.WriteFinished(t.transID, t.fileName, t.order, t.grouped)
	t.setPhase(configs.PhaseFinished)
	close(t.done)
}

func (t *Transaction) retire() {
	t.owner.active.Delete(t.fileName)
}
