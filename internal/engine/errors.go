// Package engine implements the table allocation and waiting list
// core: slot validation against operating hours, best-fit table
// selection, capacity accounting and priority-ordered waitlist
// promotion.  All mutating operations on the same
// (restaurant, date, time) slot are serialized by a per-slot lock and
// run inside a storage transaction.
package engine

import "errors"

// Sentinel errors surfaced by the engine.  Handlers translate these
// into HTTP responses with errors.Is comparisons.  None of them is
// fatal to the process; every failure is per-request.
var (
	// ErrRestaurantClosed means the requested slot falls outside the
	// resolved operating hours or on a closed date.  The wrapped
	// message carries the human-readable reason.
	ErrRestaurantClosed = errors.New("restaurant closed")

	// ErrInvalidPartySize rejects party sizes of zero.
	ErrInvalidPartySize = errors.New("invalid party size")

	// ErrInvalidTimeSlot rejects times not aligned to the
	// restaurant's slot granularity.
	ErrInvalidTimeSlot = errors.New("time not aligned to slot granularity")

	// ErrAllocationConflict is returned by the store when a
	// concurrent allocation won the race for the same table.  The
	// engine retries once before surfacing it.
	ErrAllocationConflict = errors.New("concurrent allocation conflict")

	// ErrStaleWaitlistEntry means the targeted entry already reached
	// a terminal state.  Promote and Withdraw treat it as an
	// idempotent no-op; ConfirmOffer surfaces it.
	ErrStaleWaitlistEntry = errors.New("waitlist entry no longer actionable")

	// ErrInvalidTransition is returned when a booking status change
	// violates the lifecycle diagram.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTableUnavailable is returned for a manual assignment whose
	// target table is missing, out of service or already booked at
	// the slot.
	ErrTableUnavailable = errors.New("table unavailable")

	// Not-found sentinels mapped from the storage layer.
	ErrRestaurantNotFound    = errors.New("restaurant not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
)
