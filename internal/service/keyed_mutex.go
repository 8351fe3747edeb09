// internal/service/keyed_mutex.go
package service

import (
	"sort"
	"sync"
)

// keyedMutex serializes operations per entity ID. Bid acceptance and expiry
// settlement lock the auction key; wallet mutations lock the user key.
//
// Lock ordering discipline, to keep the services deadlock-free:
//   - at most one auction key is held at a time;
//   - user keys are always acquired after any auction key, via LockAll in
//     ascending ID order;
//   - no goroutine waits on an auction key while holding user keys.
//
// Entries are never evicted: one mutex is retained per ID ever locked. At a
// few dozen bytes per auction/user this is bounded by table growth; revisit
// with reference counting if ID cardinality ever becomes a memory concern.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*sync.Mutex
}

// EntityLocks groups the lock registries shared by all services. One instance
// exists per process; services must receive the same instance so bidding,
// wallet mutations and the expiry sweep contend on the same keys.
type EntityLocks struct {
	Auctions *keyedMutex
	Users    *keyedMutex
}

// NewEntityLocks creates the shared lock registries.
func NewEntityLocks() *EntityLocks {
	return &EntityLocks{
		Auctions: newKeyedMutex(),
		Users:    newKeyedMutex(),
	}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[int64]*sync.Mutex)}
}

func (k *keyedMutex) get(id int64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.entries[id]
	if !ok {
		m = &sync.Mutex{}
		k.entries[id] = m
	}
	return m
}

// Lock acquires the mutex for the given ID.
func (k *keyedMutex) Lock(id int64) {
	k.get(id).Lock()
}

// Unlock releases the mutex for the given ID.
func (k *keyedMutex) Unlock(id int64) {
	k.get(id).Unlock()
}

// LockAll acquires the mutexes for all given IDs in ascending order,
// ignoring duplicates and non-positive IDs. It returns the release function.
func (k *keyedMutex) LockAll(ids ...int64) func() {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	for _, id := range unique {
		k.Lock(id)
	}
	return func() {
		for i := len(unique) - 1; i >= 0; i-- {
			k.Unlock(unique[i])
		}
	}
}
