package participant

import (
	"os"

	"collagefc/configs"
	"collagefc/wire"
)

func (p *Participant) handle(msg *wire.Message) {
	switch msg.Type {
	case configs.Prepare:
		p.onPrepare(msg)
	case configs.CommitSuc:
		p.onDecision(msg, true)
	case configs.CommitFail:
		p.onDecision(msg, false)
	default:
		configs.Warn(false, "participant received unexpected message type "+msg.Type)
	}
}

// onPrepare votes on a PREPARE, §4.7: a participant votes VOTEABORT if
// any named source is missing, already locally promised to another
// transaction, or the oracle declines; otherwise it locks every source
// and votes VOTECOMMIT.
func (p *Participant) onPrepare(msg *wire.Message) {
	approve := p.filesPresent(msg.Sources) && !p.locks.AnyLocked(msg.Sources)
	if approve && p.oracle != nil {
		approve = p.oracle(msg.Content, msg.Sources)
	}
	if !approve {
		p.log.WriteReject(msg.FileName, msg.Sources)
		p.reply(configs.VoteAbort, msg.FileName, msg.Sources)
		return
	}
	p.locks.Lock(msg.Sources)
	p.log.WriteAgree(msg.FileName, msg.Sources)
	p.reply(configs.VoteCommit, msg.FileName, msg.Sources)
}

func (p *Participant) filesPresent(sources []string) bool {
	for _, f := range sources {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}

// onDecision applies COMMIT_SUC/COMMIT_FAIL, §4.7. It is safe to apply
// twice: file deletion tolerates "already gone", lock release is a
// no-op on an absent entry, and re-appending Finish is harmless — this
// is how the participant tolerates the coordinator's at-least-once
// redelivery of decisions.
func (p *Participant) onDecision(msg *wire.Message, commit bool) {
	if commit {
		p.log.WriteCommit(msg.FileName, msg.Sources)
		for _, f := range msg.Sources {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				configs.Warn(false, "delete "+f+" failed: "+err.Error())
			}
		}
	} else {
		p.log.WriteAbort(msg.FileName, msg.Sources)
	}
	p.locks.Unlock(msg.Sources)
	p.log.WriteFinish(msg.FileName, msg.Sources)
	p.reply(configs.Ack, msg.FileName, msg.Sources)
}
