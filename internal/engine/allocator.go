package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// AllocateRequest describes one booking attempt.  Date is
// "2006-01-02", Time is "15:04" and must already be aligned to the
// restaurant's slot granularity (handlers validate this before the
// engine is invoked; the engine re-checks the cheap invariants).
type AllocateRequest struct {
	RestaurantID uint64
	CustomerID   uint64
	Date         string
	Time         string
	PartySize    uint32
	Notes        *string
	// Confirmed makes the booking start CONFIRMED instead of
	// PENDING.  Staff-created bookings and walk-ins are confirmed.
	Confirmed bool
	// TableID, when set, is a staff manual assignment: best-fit
	// selection is bypassed and the chosen table is used as long as
	// it is in service and not already committed at the slot.
	TableID *uint64
	// WalkIn admits the party even when no table fits; the booking
	// is created confirmed with a null table awaiting manual
	// seating.  Walk-ins never land on the waiting list.
	WalkIn bool
}

// AllocateResult is either a Booking or a WaitingListEntry, never
// both.  Method reports how the request was satisfied: AUTO or MANUAL
// for bookings, WAITLIST when the request was queued.
type AllocateResult struct {
	Booking *model.Booking
	Entry   *model.WaitingListEntry
	Method  model.AssignmentMethod
}

// Allocate decides one booking request: it validates the slot against
// operating hours, picks the best-fit free table and commits a
// booking, or queues the request on the waiting list when nothing
// fits.  Table selection and the insert are atomic with respect to
// concurrent Allocate and Promote calls on the same slot.  A
// storage-level conflict is retried once before being surfaced.
func (e *Engine) Allocate(ctx context.Context, req AllocateRequest) (*AllocateResult, error) {
	if req.PartySize == 0 {
		return nil, ErrInvalidPartySize
	}
	open, reason, err := e.IsOpen(ctx, req.RestaurantID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s", ErrRestaurantClosed, reason)
	}

	release := e.locks.acquire(slotKey(req.RestaurantID, req.Date, req.Time))
	defer release()

	res, err := e.allocateLocked(ctx, req)
	if errors.Is(err, ErrAllocationConflict) {
		res, err = e.allocateLocked(ctx, req)
	}
	return res, err
}

// allocateLocked runs one allocation attempt inside a transaction.
// The slot lock must be held.
func (e *Engine) allocateLocked(ctx context.Context, req AllocateRequest) (*AllocateResult, error) {
	var result *AllocateResult
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		free, err := e.freeTables(ctx, req.RestaurantID, req.Date, req.Time)
		if err != nil {
			return err
		}

		if req.TableID != nil {
			return e.assignManual(ctx, req, free, &result)
		}

		table := bestFit(free, req.PartySize)
		if table == nil && !req.WalkIn {
			entry, err := e.enqueue(ctx, req)
			if err != nil {
				return err
			}
			result = &AllocateResult{Entry: entry, Method: model.AssignWaitlist}
			return nil
		}

		b := &model.Booking{
			RestaurantID:     req.RestaurantID,
			CustomerID:       req.CustomerID,
			Date:             req.Date,
			Time:             req.Time,
			PartySize:        req.PartySize,
			Status:           model.BookingPending,
			AssignmentMethod: model.AssignAuto,
			Notes:            req.Notes,
			CreatedAt:        e.clock.Now(),
		}
		if req.Confirmed || req.WalkIn {
			b.Status = model.BookingConfirmed
		}
		if table != nil {
			b.TableID = &table.ID
		}
		if err := e.store.CreateBooking(ctx, b); err != nil {
			return err
		}
		result = &AllocateResult{Booking: b, Method: model.AssignAuto}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Booking != nil && result.Booking.Status == model.BookingConfirmed {
		e.notifier.BookingConfirmed(ctx, *result.Booking)
	}
	return result, nil
}

// assignManual books the staff-chosen table.  The table must be among
// the free candidates; capacity is not enforced so staff may seat an
// oversized party at their own discretion.
func (e *Engine) assignManual(ctx context.Context, req AllocateRequest, free []model.Table, out **AllocateResult) error {
	var chosen *model.Table
	for i := range free {
		if free[i].ID == *req.TableID {
			chosen = &free[i]
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("%w: table %d at %s %s", ErrTableUnavailable, *req.TableID, req.Date, req.Time)
	}
	b := &model.Booking{
		RestaurantID:     req.RestaurantID,
		TableID:          &chosen.ID,
		CustomerID:       req.CustomerID,
		Date:             req.Date,
		Time:             req.Time,
		PartySize:        req.PartySize,
		Status:           model.BookingConfirmed,
		AssignmentMethod: model.AssignManual,
		Notes:            req.Notes,
		CreatedAt:        e.clock.Now(),
	}
	if err := e.store.CreateBooking(ctx, b); err != nil {
		return err
	}
	*out = &AllocateResult{Booking: b, Method: model.AssignManual}
	return nil
}

// enqueue creates a WAITING entry with the next priority_order for
// the restaurant.  The queue lock serializes priority assignment
// across slots; it nests strictly inside the slot lock.
func (e *Engine) enqueue(ctx context.Context, req AllocateRequest) (*model.WaitingListEntry, error) {
	release := e.locks.acquire(queueKey(req.RestaurantID))
	defer release()

	max, err := e.store.MaxPriorityOrder(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	entry := &model.WaitingListEntry{
		RestaurantID:  req.RestaurantID,
		CustomerID:    req.CustomerID,
		Date:          req.Date,
		Time:          req.Time,
		PartySize:     req.PartySize,
		Status:        model.WaitlistWaiting,
		PriorityOrder: max + 1,
		Notes:         req.Notes,
		CreatedAt:     e.clock.Now(),
	}
	if err := e.store.CreateWaitlistEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Transition moves a booking to a new lifecycle status.  Moves into a
// terminal state release the booking's capacity and trigger exactly
// one waitlist promotion attempt for the slot.  Re-applying a
// transition the booking has already taken (cancelling a cancelled
// booking, completing a completed one) is an idempotent no-op and
// triggers nothing.
func (e *Engine) Transition(ctx context.Context, bookingID uint64, to model.BookingStatus) (*model.Booking, error) {
	b, err := e.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == to {
		return b, nil // idempotent repeat
	}

	release := e.locks.acquire(slotKey(b.RestaurantID, b.Date, b.Time))

	wasActive := false
	changed := false
	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		b, err = e.store.BookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == to {
			return nil
		}
		wasActive = model.ActiveBookingStatus(b.Status)
		if err := b.Transition(to); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		changed = true
		return e.store.UpdateBookingStatus(ctx, bookingID, to)
	})
	release()
	if err != nil {
		return nil, err
	}
	if changed && b.Status == model.BookingConfirmed {
		e.notifier.BookingConfirmed(ctx, *b)
	}
	// Freed capacity: give the waiting list one shot at the slot.
	if changed && wasActive && model.TerminalBookingStatus(b.Status) {
		if _, err := e.Promote(ctx, b.RestaurantID, b.Date, b.Time); err != nil {
			return b, err
		}
	}
	return b, nil
}

// Cancel cancels a booking.  Calling it twice is a no-op the second
// time.
func (e *Engine) Cancel(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return e.Transition(ctx, bookingID, model.BookingCancelled)
}

// Complete marks a seated booking finished.
func (e *Engine) Complete(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return e.Transition(ctx, bookingID, model.BookingCompleted)
}
