package app

import "sync"

// orderLocks hands out one mutex per order id so operations on the same
// order are serialized in process. Cross-process writers are still caught
// by the CAS status write. Entries are reference-counted and dropped once
// the last holder releases, so the map stays bounded by the number of
// in-flight operations rather than the number of ids ever seen.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[string]*orderLock)}
}

func (l *orderLocks) acquire(id string) *orderLock {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &orderLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return m
}

func (l *orderLocks) release(id string, m *orderLock) {
	m.Unlock()

	l.mu.Lock()
	m.refs--
	if m.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}

func (l *orderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
