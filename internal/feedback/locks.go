package feedback

import "sync"

// alertLocks hands out one mutex per alert id. Entries are dropped once no
// caller holds or waits on them.
type alertLocks struct {
	mu    sync.Mutex
	locks map[int64]*alertLock
}

type alertLock struct {
	mu   sync.Mutex
	refs int
}

func newAlertLocks() *alertLocks {
	return &alertLocks{locks: make(map[int64]*alertLock)}
}

// lock blocks until the caller owns alertID and returns the release func.
func (l *alertLocks) lock(alertID int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[alertID]
	if !ok {
		entry = &alertLock{}
		l.locks[alertID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, alertID)
		}
		l.mu.Unlock()
	}
}

func (l *alertLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
