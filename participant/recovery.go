package participant

import (
	"os"

	"collagefc/configs"
)

// Recover replays the durable log on restart, §4.7. For every
// fileName, only the last record matters:
//   - Agree: the participant had locked the sources and voted commit
//     but never observed a decision; the lock is reinstated so a late
//     or retransmitted decision from the coordinator is still honored.
//   - Reject: terminal, nothing to redo.
//   - COMMIT/ABORT (decision applied but Finish never logged): finish
//     the work — delete sources for COMMIT, release the lock either
//     way, and log Finish.
//   - Finish: terminal, nothing to redo.
func (p *Participant) Recover() {
	records, err := p.log.ReplayLastPerFile()
	configs.CheckError(err)
	for fileName, rec := range records {
		switch rec.Decision {
		case configs.LogAgree:
			p.locks.Lock(rec.Sources)
		case configs.LogCommitApplied:
			for _, f := range rec.Sources {
				if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
					configs.Warn(false, "delete "+f+" failed: "+err.Error())
				}
			}
			p.locks.Unlock(rec.Sources)
			p.log.WriteFinish(fileName, rec.Sources)
		case configs.LogAbortApplied:
			p.locks.Unlock(rec.Sources)
			p.log.WriteFinish(fileName, rec.Sources)
		}
	}
}
