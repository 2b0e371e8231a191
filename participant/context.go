package participant

import (
	"fmt"

	"collagefc/configs"
	"collagefc/transport"
	"collagefc/wire"
)

// Participant owns the local lock set, the durable log, and the
// messaging substrate for one node, §4.3/§4.7. Unlike the coordinator
// it has no worker-per-fileName split: a single goroutine handles
// every inbound message in arrival order, since a participant's
// per-file state transition is a single log write plus at most one
// filesystem operation and never blocks waiting on a peer.
type Participant struct {
	id          string
	addr        string
	coordinator string
	sub         transport.Substrate
	log         *ParticipantLog
	locks       *LockSet
	oracle      transport.Oracle
}

// NewParticipant opens the durable log at fmt.Sprintf(configs.ParticipantLogFmt, id).
func NewParticipant(id, addr, coordinator string, sub transport.Substrate, oracle transport.Oracle) *Participant {
	return &Participant{
		id:          id,
		addr:        addr,
		coordinator: coordinator,
		sub:         sub,
		log:         OpenParticipantLog(fmt.Sprintf(configs.ParticipantLogFmt, id)),
		locks:       NewLockSet(),
		oracle:      oracle,
	}
}

// Run is the single receive loop, §4.7: decode every inbound message
// and handle it inline. It returns once the substrate is closed.
func (p *Participant) Run() {
	for {
		_, payload, ok := p.sub.Receive()
		if !ok {
			return
		}
		msg, err := wire.Decode(payload)
		if err != nil {
			configs.Warn(false, "dropping malformed message: "+err.Error())
			continue
		}
		p.handle(msg)
	}
}

func (p *Participant) Close() {
	p.sub.Close()
	p.log.Close()
}

func (p *Participant) reply(msgType, fileName string, sources []string) {
	out := &wire.Message{Type: msgType, FileName: fileName, Sources: sources}
	payload, err := wire.Encode(out)
	if err != nil {
		configs.Warn(false, "encode failed for "+fileName+": "+err.Error())
		return
	}
	p.sub.Send(p.coordinator, payload)
}
