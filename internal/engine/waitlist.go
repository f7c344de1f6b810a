package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Promote offers a freed table to the waiting list of one slot.  It
// scans WAITING entries in ascending priority_order and notifies the
// first one whose party fits a free table; the chosen table is
// reserved for that entry until the offer is confirmed, withdrawn or
// expires.  An entry with lower priority_order is never skipped while
// it remains WAITING and a table fits it.  At most one entry is
// promoted per call; returns (nil, nil) when nothing could be
// promoted.
func (e *Engine) Promote(ctx context.Context, restaurantID uint64, date, slot string) (*model.WaitingListEntry, error) {
	release := e.locks.acquire(slotKey(restaurantID, date, slot))

	var promoted *model.WaitingListEntry
	var offered model.Table
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		free, err := e.freeTables(ctx, restaurantID, date, slot)
		if err != nil {
			return err
		}
		if len(free) == 0 {
			return nil
		}
		entries, err := e.store.WaitingEntries(ctx, restaurantID, date, slot)
		if err != nil {
			return err
		}
		for i := range entries {
			table := bestFit(free, entries[i].PartySize)
			if table == nil {
				continue
			}
			entry := entries[i]
			if err := entry.Transition(model.WaitlistNotified); err != nil {
				// Racy status change; treat as stale and move on.
				log.Printf("waitlist: skip entry %d: %v", entry.ID, err)
				continue
			}
			entry.OfferedTableID = &table.ID
			if err := e.store.UpdateWaitlistEntry(ctx, entry.ID, model.WaitlistNotified, &table.ID); err != nil {
				return err
			}
			promoted = &entry
			offered = *table
			return nil
		}
		return nil
	})
	release()
	if err != nil || promoted == nil {
		return nil, err
	}

	e.notifier.WaitlistOffer(ctx, *promoted, offered)
	e.scheduleOfferExpiry(promoted.ID)
	return promoted, nil
}

// scheduleOfferExpiry arms the offer timeout for a notified entry.
func (e *Engine) scheduleOfferExpiry(entryID uint64) {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if t, ok := e.timers[entryID]; ok {
		t.Stop()
	}
	e.timers[entryID] = time.AfterFunc(e.offerTTL, func() {
		if err := e.ExpireOffer(context.Background(), entryID); err != nil {
			log.Printf("waitlist: expire offer %d: %v", entryID, err)
		}
	})
}

// cancelOfferExpiry disarms a pending offer timer, if any.
func (e *Engine) cancelOfferExpiry(entryID uint64) {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if t, ok := e.timers[entryID]; ok {
		t.Stop()
		delete(e.timers, entryID)
	}
}

// ExpireOffer times out a NOTIFIED entry and retries promotion with
// the next candidate.  Targeting an entry in any other state is a
// logged no-op, so a late timer firing after a confirmation is
// harmless.
func (e *Engine) ExpireOffer(ctx context.Context, entryID uint64) error {
	entry, err := e.store.WaitlistEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	e.cancelOfferExpiry(entryID)

	release := e.locks.acquire(slotKey(entry.RestaurantID, entry.Date, entry.Time))
	expired := false
	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		entry, err = e.store.WaitlistEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != model.WaitlistNotified {
			log.Printf("waitlist: expire on entry %d in state %s ignored", entryID, entry.Status)
			return nil
		}
		expired = true
		return e.store.UpdateWaitlistEntry(ctx, entryID, model.WaitlistExpired, nil)
	})
	release()
	if err != nil || !expired {
		return err
	}
	// The offered table is free again; try the next entry in line.
	_, err = e.Promote(ctx, entry.RestaurantID, entry.Date, entry.Time)
	return err
}

// ConfirmOffer converts a NOTIFIED entry into a confirmed booking on
// its offered table.  The booking carries assignment_method WAITLIST
// and was_on_waitlist, and the entry moves to CONFIRMED.  Confirming
// an entry that is not currently notified returns
// ErrStaleWaitlistEntry.
func (e *Engine) ConfirmOffer(ctx context.Context, entryID uint64) (*model.Booking, error) {
	entry, err := e.store.WaitlistEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	release := e.locks.acquire(slotKey(entry.RestaurantID, entry.Date, entry.Time))
	var booking *model.Booking
	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		entry, err = e.store.WaitlistEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != model.WaitlistNotified || entry.OfferedTableID == nil {
			return fmt.Errorf("%w: entry %d is %s", ErrStaleWaitlistEntry, entryID, entry.Status)
		}
		b := &model.Booking{
			RestaurantID:     entry.RestaurantID,
			TableID:          entry.OfferedTableID,
			CustomerID:       entry.CustomerID,
			Date:             entry.Date,
			Time:             entry.Time,
			PartySize:        entry.PartySize,
			Status:           model.BookingConfirmed,
			AssignmentMethod: model.AssignWaitlist,
			WasOnWaitlist:    true,
			Notes:            entry.Notes,
			CreatedAt:        e.clock.Now(),
		}
		if err := e.store.CreateBooking(ctx, b); err != nil {
			return err
		}
		if err := e.store.UpdateWaitlistEntry(ctx, entryID, model.WaitlistConfirmed, entry.OfferedTableID); err != nil {
			return err
		}
		booking = b
		return nil
	})
	release()
	if err != nil {
		return nil, err
	}
	e.cancelOfferExpiry(entryID)
	e.notifier.BookingConfirmed(ctx, *booking)
	return booking, nil
}

// Withdraw cancels a waiting list entry at the customer's request.
// WAITING and NOTIFIED entries move to CANCELLED; entries already in
// a terminal state are a logged, idempotent no-op (a confirmed entry
// is a booking now and must be cancelled as one).  Withdrawing a
// notified entry releases its offered table and retries promotion.
func (e *Engine) Withdraw(ctx context.Context, entryID uint64) error {
	entry, err := e.store.WaitlistEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	release := e.locks.acquire(slotKey(entry.RestaurantID, entry.Date, entry.Time))
	hadOffer := false
	withdrawn := false
	err = e.store.WithTx(ctx, func(ctx context.Context) error {
		entry, err = e.store.WaitlistEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if model.TerminalWaitlistStatus(entry.Status) {
			log.Printf("waitlist: withdraw on entry %d in state %s ignored", entryID, entry.Status)
			return nil
		}
		hadOffer = entry.Status == model.WaitlistNotified
		withdrawn = true
		return e.store.UpdateWaitlistEntry(ctx, entryID, model.WaitlistCancelled, nil)
	})
	release()
	if err != nil || !withdrawn {
		return err
	}
	e.cancelOfferExpiry(entryID)
	if hadOffer {
		// Offered table freed; let the next entry have it.
		_, err = e.Promote(ctx, entry.RestaurantID, entry.Date, entry.Time)
	}
	return err
}
