package coordinator

import (
	"sync"

	"collagefc/configs"
)

// classifyLogRecords replays the log's decision history into the two
// sets a restarting coordinator needs, §4.6: transactions that reached
// a durable commit record but not finished, and transactions that
// reached prepare or abort but not finished. A commit record always
// wins over an earlier abort or prepare record for the same transID;
// a finished record retires it from both sets.
func classifyLogRecords(records []CoordinatorLogRecord) (toCommit, toAbort map[uint64]CoordinatorLogRecord) {
	toCommit = map[uint64]CoordinatorLogRecord{}
	toAbort = map[uint64]CoordinatorLogRecord{}
	for _, rec := range records {
		switch rec.Decision {
		case configs.LogPrepare:
			toAbort[rec.TransID] = rec
		case configs.LogCommit:
			delete(toAbort, rec.TransID)
			toCommit[rec.TransID] = rec
		case configs.LogAbort:
			delete(toCommit, rec.TransID)
			toAbort[rec.TransID] = rec
		case configs.LogFinished:
			delete(toAbort, rec.TransID)
			delete(toCommit, rec.TransID)
		}
	}
	return toCommit, toAbort
}

// Recover replays the durable log and resumes every transaction left
// mid-flight by a prior crash, then truncates the log once they have
// all reached Finish. It blocks until recovery completes, so Dispatch
// must already be running: a resumed transaction receives its ACKs only
// through it. Each resumed transaction is stored in active before it
// re-sends its decision, so every ACK it waits for finds it there.
func (c *Coordinator) Recover() {
	records, err := c.log.ReplayAll()
	configs.CheckError(err)
	toCommit, toAbort := classifyLogRecords(records)
	if len(toCommit) == 0 && len(toAbort) == 0 {
		return
	}

	var wg sync.WaitGroup
	resume := func(rec CoordinatorLogRecord, commit bool) {
		txn := newTransactionRecovery(c, rec, commit)
		c.active.Store(txn.fileName, txn)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if commit {
				txn.runRecoveryCommit()
			} else {
				txn.runRecoveryAbort()
			}
		}()
	}
	for _, rec := range toCommit {
		resume(rec, true)
	}
	for _, rec := range toAbort {
		resume(rec, false)
	}
	wg.Wait()
	c.log.TruncateAndReopen()
}
