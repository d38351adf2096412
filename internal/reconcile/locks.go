package reconcile

import "sync"

// lockTable guarantees at most one in-flight reconciliation operation per
// domain. Acquire fails fast instead of blocking: interleaved diff
// computation against a moving remote state loses updates and duplicates
// creates, so a second caller gets ErrBusy.
type lockTable struct {
	mu     sync.Mutex
	active map[int]struct{}
}

func newLockTable() *lockTable {
	return &lockTable{active: make(map[int]struct{})}
}

// acquire claims the domain's exclusive section or returns ErrBusy
func (t *lockTable) acquire(domainID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, held := t.active[domainID]; held {
		return ErrBusy
	}
	t.active[domainID] = struct{}{}
	return nil
}

// release frees the domain's exclusive section
func (t *lockTable) release(domainID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, domainID)
}
