package engine

import (
	"fmt"
	"sync"
)

// slotLocks hands out reference-counted mutexes keyed by an opaque
// string.  The engine uses one key per (restaurant, date, time) slot
// and one per restaurant for priority_order assignment, so two
// concurrent allocations for the same slot never interleave between
// reading candidate tables and committing a booking.  Entries are
// removed once the last holder releases, keeping the map bounded by
// the number of in-flight operations.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

// acquire blocks until the lock for key is held and returns the
// release function.  Release must be called exactly once.
func (s *slotLocks) acquire(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &slotLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// slotKey builds the lock key for an exact slot.
func slotKey(restaurantID uint64, date, slot string) string {
	return fmt.Sprintf("slot:%d:%s:%s", restaurantID, date, slot)
}

// queueKey builds the lock key guarding priority_order assignment for
// a restaurant.  It is always acquired after the slot key, never the
// other way around.
func queueKey(restaurantID uint64) string {
	return fmt.Sprintf("queue:%d", restaurantID)
}
