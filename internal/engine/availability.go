package engine

import (
	"context"
)

// AvailabilitySnapshot is the capacity picture of one exact slot.
// TotalCapacity counts only tables whose status is AVAILABLE, so it
// reflects currently sellable capacity rather than the physical
// inventory; Availability and Allocate therefore always agree on what
// a candidate table is.  WaitingCount is the number of WAITING
// entries at the slot, not their summed party sizes.
type AvailabilitySnapshot struct {
	TotalCapacity     uint32 `json:"total_capacity"`
	BookedCapacity    uint32 `json:"booked_capacity"`
	AvailableCapacity uint32 `json:"available_capacity"`
	WaitingCount      uint32 `json:"waiting_count"`
}

// SlotAvailability pairs one slot time with its snapshot, used by the
// day view.
type SlotAvailability struct {
	Time string `json:"time"`
	AvailabilitySnapshot
}

// DayAvailability walks the service window of one date at the
// restaurant's slot granularity and returns a snapshot per slot.  A
// day the restaurant does not serve yields an empty slice.
func (e *Engine) DayAvailability(ctx context.Context, restaurantID uint64, date string) ([]SlotAvailability, error) {
	rest, err := e.store.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	open, opensAt, closesAt, err := e.DayWindow(ctx, restaurantID, date)
	if err != nil {
		return nil, err
	}
	if !open {
		return []SlotAvailability{}, nil
	}
	opens, err := parseClock(opensAt)
	if err != nil {
		return nil, err
	}
	closes, err := parseClock(closesAt)
	if err != nil {
		return nil, err
	}

	var out []SlotAvailability
	for m := opens; m < closes; m += int(rest.SlotMinutes) {
		slot := formatClock(m)
		snap, err := e.Availability(ctx, restaurantID, date, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotAvailability{Time: slot, AvailabilitySnapshot: snap})
	}
	return out, nil
}

// Availability computes the snapshot for (restaurant, date, time).
// It is a point query on the exact slot; callers wanting a day view
// invoke it once per slot.  AvailableCapacity never goes negative:
// a slot oversold by manual assignments reports zero.
func (e *Engine) Availability(ctx context.Context, restaurantID uint64, date, slot string) (AvailabilitySnapshot, error) {
	var snap AvailabilitySnapshot
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := e.store.Restaurant(ctx, restaurantID); err != nil {
			return err
		}
		tables, err := e.store.UsableTables(ctx, restaurantID)
		if err != nil {
			return err
		}
		for _, t := range tables {
			snap.TotalCapacity += t.Capacity
		}
		active, err := e.store.ActiveBookings(ctx, restaurantID, date, slot)
		if err != nil {
			return err
		}
		for _, b := range active {
			snap.BookedCapacity += b.PartySize
		}
		if snap.TotalCapacity > snap.BookedCapacity {
			snap.AvailableCapacity = snap.TotalCapacity - snap.BookedCapacity
		}
		snap.WaitingCount, err = e.store.WaitingCount(ctx, restaurantID, date, slot)
		return err
	})
	return snap, err
}
