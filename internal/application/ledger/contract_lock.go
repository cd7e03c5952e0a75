package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// contractLocks serializes ledger operations per contract. Allocation reads
// the plan, mutates it and writes several rows; optimistic locking alone
// would turn concurrent payments on the same contract into retry storms, so
// the service takes a per-contract mutex first and keeps the version check as
// the cross-process guard.
type contractLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*contractLock
}

type contractLock struct {
	mu   sync.Mutex
	refs int
}

func newContractLocks() *contractLocks {
	return &contractLocks{locks: make(map[uuid.UUID]*contractLock)}
}

// Lock acquires the mutex for a contract and returns its unlock function
func (l *contractLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &contractLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
