package service

import "sync"

// IdentityLocks serializes lifecycle transitions per assignment id.
// Transitions on different ids proceed independently; transitions on the same
// id take the same mutex. Locks are never evicted, which is bounded by the
// number of distinct assignments mutated by the process.
type IdentityLocks struct {
	locks sync.Map
}

// NewIdentityLocks constructs an empty lock registry.
func NewIdentityLocks() *IdentityLocks {
	return &IdentityLocks{}
}

// Lock acquires the mutex for id, creating it on first use. The returned
// function releases it.
func (l *IdentityLocks) Lock(id int64) func() {
	v, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
