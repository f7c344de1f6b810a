package model

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.  All status
// checks and transitions go through CanTransition/Transition so that
// the state diagram lives in exactly one place.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"   // created, awaiting staff confirmation
	BookingConfirmed BookingStatus = "CONFIRMED" // confirmed by staff or via waitlist offer
	BookingSeated    BookingStatus = "SEATED"    // party has been seated
	BookingCompleted BookingStatus = "COMPLETED" // terminal
	BookingCancelled BookingStatus = "CANCELLED" // terminal
	BookingNoShow    BookingStatus = "NO_SHOW"   // terminal
)

// AssignmentMethod records how a booking got its table.
type AssignmentMethod string

const (
	AssignAuto     AssignmentMethod = "AUTO"     // engine best-fit selection
	AssignManual   AssignmentMethod = "MANUAL"   // staff picked the table explicitly
	AssignWaitlist AssignmentMethod = "WAITLIST" // converted from a waiting list entry
)

// bookingTransitions enumerates the legal status transitions.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingSeated, BookingCancelled, BookingNoShow},
	BookingConfirmed: {BookingSeated, BookingCancelled, BookingNoShow},
	BookingSeated:    {BookingCompleted, BookingCancelled},
}

// ActiveBookingStatus reports whether s counts against table capacity.
// PENDING, CONFIRMED and SEATED bookings hold their slot; terminal
// states release it.
func ActiveBookingStatus(s BookingStatus) bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingSeated
}

// TerminalBookingStatus reports whether s is a final state.
func TerminalBookingStatus(s BookingStatus) bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// ValidBookingStatus reports whether s is a known lifecycle state.
func ValidBookingStatus(s BookingStatus) bool {
	return ActiveBookingStatus(s) || TerminalBookingStatus(s)
}

// CanTransition reports whether a booking may move from one status to
// another according to the lifecycle diagram.
func CanTransition(from, to BookingStatus) bool {
	for _, t := range bookingTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Booking records a committed (or requested) table reservation at an
// exact slot.  TableID is nullable: nil means the booking is awaiting
// assignment, for example a walk-in that has not been seated yet.
// Capacity commitment is derived from active bookings, so a table may
// never carry two active bookings at the same (date, time).
//
// Fields:
//  ID               – primary key identifier.
//  RestaurantID     – restaurant being booked.
//  TableID          – assigned table (nullable).
//  CustomerID       – user who requested the booking.
//  Date             – booking date ("YYYY-MM-DD").
//  Time             – booking time slot ("HH:MM").
//  PartySize        – number of guests (positive).
//  Status           – lifecycle status.
//  AssignmentMethod – AUTO, MANUAL or WAITLIST.
//  WasOnWaitlist    – whether the booking originated on the waiting list.
//  Notes            – optional free-form notes.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64           // bookings.id
	RestaurantID     uint64           // bookings.restaurant_id
	TableID          *uint64          // bookings.table_id (nullable)
	CustomerID       uint64           // bookings.customer_id
	Date             string           // bookings.date
	Time             string           // bookings.time
	PartySize        uint32           // bookings.party_size
	Status           BookingStatus    // bookings.status
	AssignmentMethod AssignmentMethod // bookings.assignment_method
	WasOnWaitlist    bool             // bookings.was_on_waitlist
	Notes            *string          // bookings.notes (nullable)
	CreatedAt        time.Time        // bookings.created_at
	UpdatedAt        time.Time        // bookings.updated_at
}

// Transition moves the booking to a new status after validating the
// move.  It returns an error naming both states when the transition
// is not allowed.
func (b *Booking) Transition(to BookingStatus) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("booking %d: cannot transition from %s to %s", b.ID, b.Status, to)
	}
	b.Status = to
	return nil
}
