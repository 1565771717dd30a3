// Package locks provides in-process per-key mutual exclusion. Checkout
// and the cart writes it races against are serialized per user with one
// of these, which keeps the transaction engine correct on database
// drivers that have no usable row locking.
package locks

import "sync"

// KeyedMutex hands out one mutex per key on demand. Entries are
// reference-counted and removed again once the last holder unlocks, so
// the map does not grow with the user table.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns an empty KeyedMutex ready for use.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint]*keyLock)}
}

// Lock blocks until the key is free, then returns the function that
// releases it. The caller defers the release.
func (k *KeyedMutex) Lock(key uint) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

var users = NewKeyedMutex()

// LockUser serializes mutations of one user's cart and orders. Every
// code path that turns cart lines into an order, or edits lines while a
// checkout may be running, takes this first.
func LockUser(userID uint) func() {
	return users.Lock(userID)
}
