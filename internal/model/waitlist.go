package model

import (
	"fmt"
	"time"
)

// WaitlistStatus is the lifecycle state of a waiting list entry.
//
// The diagram is:
//
//	WAITING -> NOTIFIED -> CONFIRMED
//	WAITING -> NOTIFIED -> EXPIRED
//	WAITING | NOTIFIED -> CANCELLED  (explicit withdrawal)
//
// CONFIRMED, EXPIRED and CANCELLED are terminal.
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "WAITING"   // queued, eligible for promotion
	WaitlistNotified  WaitlistStatus = "NOTIFIED"  // offered a freed table, awaiting customer
	WaitlistConfirmed WaitlistStatus = "CONFIRMED" // converted into a booking
	WaitlistExpired   WaitlistStatus = "EXPIRED"   // offer timed out
	WaitlistCancelled WaitlistStatus = "CANCELLED" // withdrawn by the customer
)

var waitlistTransitions = map[WaitlistStatus][]WaitlistStatus{
	WaitlistWaiting:  {WaitlistNotified, WaitlistCancelled},
	WaitlistNotified: {WaitlistConfirmed, WaitlistExpired, WaitlistCancelled},
}

// CanTransitionWaitlist reports whether an entry may move between the
// two statuses.
func CanTransitionWaitlist(from, to WaitlistStatus) bool {
	for _, t := range waitlistTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TerminalWaitlistStatus reports whether s is a final state.
func TerminalWaitlistStatus(s WaitlistStatus) bool {
	return s == WaitlistConfirmed || s == WaitlistExpired || s == WaitlistCancelled
}

// WaitingListEntry is a queued booking request that could not be
// allocated a table.  PriorityOrder is monotonically increasing per
// restaurant and never changes once assigned, which preserves strict
// arrival-order fairness across promotion retries.
//
// Fields:
//  ID            – primary key identifier.
//  RestaurantID  – restaurant the request targets.
//  CustomerID    – user who is waiting.
//  Date          – requested date ("YYYY-MM-DD").
//  Time          – requested time slot ("HH:MM").
//  PartySize     – number of guests (positive).
//  Status        – lifecycle status.
//  PriorityOrder – arrival order within the restaurant; lower is served first.
//  OfferedTableID – table reserved for this entry while NOTIFIED (nullable).
//  Notes         – optional free-form notes.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type WaitingListEntry struct {
	ID             uint64         // waiting_list.id
	RestaurantID   uint64         // waiting_list.restaurant_id
	CustomerID     uint64         // waiting_list.customer_id
	Date           string         // waiting_list.date
	Time           string         // waiting_list.time
	PartySize      uint32         // waiting_list.party_size
	Status         WaitlistStatus // waiting_list.status
	PriorityOrder  uint64         // waiting_list.priority_order
	OfferedTableID *uint64        // waiting_list.offered_table_id (nullable)
	Notes          *string        // waiting_list.notes (nullable)
	CreatedAt      time.Time      // waiting_list.created_at
	UpdatedAt      time.Time      // waiting_list.updated_at
}

// Transition moves the entry to a new status after validating the
// move against the state diagram.
func (e *WaitingListEntry) Transition(to WaitlistStatus) error {
	if !CanTransitionWaitlist(e.Status, to) {
		return fmt.Errorf("waitlist entry %d: cannot transition from %s to %s", e.ID, e.Status, to)
	}
	e.Status = to
	return nil
}
