package participant

import (
	mapset "github.com/deckarep/golang-set/v2"
	lock "github.com/viney-shih/go-lock"
)

// LockSet tracks local filenames promised to some live transaction,
// §3/§4.7. Grounded on the teacher's latch style for contended state
// (storage/cc_2pl_nw.go, storage/cc_vll.go use viney-shih/go-lock's
// Mutex for every hot guard in that codebase); generalized here from a
// row latch to the set of filenames currently locally promised.
type LockSet struct {
	mu  lock.Mutex
	set mapset.Set[string]
}

func NewLockSet() *LockSet {
	return &LockSet{mu: lock.NewCASMutex(), set: mapset.NewSet[string]()}
}

// AnyLocked reports whether any of files is already promised.
func (l *LockSet) AnyLocked(files []string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range files {
		if l.set.Contains(f) {
			return true
		}
	}
	return false
}

// Lock promises every file in files to the caller's transaction.
func (l *LockSet) Lock(files []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range files {
		l.set.Add(f)
	}
}

// Unlock releases every file in files. Releasing a file not currently
// held is a no-op, which makes it safe to call from idempotent
// decision handling.
func (l *LockSet) Unlock(files []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range files {
		l.set.Remove(f)
	}
}
