package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Store is the persistence surface the engine operates on.  The MySQL
// implementation lives in the repository package; tests use an
// in-memory fake.  WithTx runs fn inside a transaction; every other
// method participates in the surrounding transaction when invoked
// from within fn.
//
// Optional lookups (WeeklyHours, ClosedDate, CustomHours) return
// (nil, nil) when no row exists.  ByID lookups return the matching
// engine sentinel (ErrRestaurantNotFound and friends) when the row is
// missing.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error)
	WeeklyHours(ctx context.Context, restaurantID uint64, weekday uint8) (*model.OperatingHours, error)
	ClosedDate(ctx context.Context, restaurantID uint64, date string) (*model.ClosedDate, error)
	CustomHours(ctx context.Context, restaurantID uint64, date string) (*model.CustomHours, error)

	// UsableTables returns tables with status AVAILABLE ordered by
	// capacity ascending, then table number ascending.
	UsableTables(ctx context.Context, restaurantID uint64) ([]model.Table, error)

	ActiveBookings(ctx context.Context, restaurantID uint64, date, slot string) ([]model.Booking, error)
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error

	MaxPriorityOrder(ctx context.Context, restaurantID uint64) (uint64, error)
	CreateWaitlistEntry(ctx context.Context, e *model.WaitingListEntry) error
	// WaitingEntries returns entries with status WAITING ordered by
	// priority_order ascending.
	WaitingEntries(ctx context.Context, restaurantID uint64, date, slot string) ([]model.WaitingListEntry, error)
	WaitingCount(ctx context.Context, restaurantID uint64, date, slot string) (uint32, error)
	// OfferedTableIDs returns the tables currently reserved by
	// NOTIFIED entries at the slot.
	OfferedTableIDs(ctx context.Context, restaurantID uint64, date, slot string) ([]uint64, error)
	WaitlistEntryByID(ctx context.Context, id uint64) (*model.WaitingListEntry, error)
	UpdateWaitlistEntry(ctx context.Context, id uint64, status model.WaitlistStatus, offeredTableID *uint64) error
}

// Notifier receives engine events destined for the notification
// collaborator.  Implementations must not block; failures are the
// implementation's problem and never abort the triggering operation.
type Notifier interface {
	WaitlistOffer(ctx context.Context, entry model.WaitingListEntry, table model.Table)
	BookingConfirmed(ctx context.Context, booking model.Booking)
}

type noopNotifier struct{}

func (noopNotifier) WaitlistOffer(context.Context, model.WaitingListEntry, model.Table) {}
func (noopNotifier) BookingConfirmed(context.Context, model.Booking)                    {}

// Engine is the allocation and waitlist core.  One instance serves
// all restaurants; per-slot serialization happens on the internal
// lock table.
type Engine struct {
	store    Store
	notifier Notifier
	clock    Clock
	locks    *slotLocks
	offerTTL time.Duration

	timerMu sync.Mutex
	timers  map[uint64]*time.Timer // waitlist entry ID -> offer expiry timer
}

// DefaultOfferTTL is how long a notified customer has to confirm a
// promoted waitlist offer before it expires.
const DefaultOfferTTL = 10 * time.Minute

// Option customises an Engine.
type Option func(*Engine)

// WithNotifier sets the notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides the engine clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithOfferTTL overrides the waitlist offer timeout.
func WithOfferTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.offerTTL = d
		}
	}
}

// New constructs an Engine over the given store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: noopNotifier{},
		clock:    NewSystemClock(),
		locks:    newSlotLocks(),
		offerTTL: DefaultOfferTTL,
		timers:   make(map[uint64]*time.Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close stops all pending offer expiry timers.  Entries stuck in
// NOTIFIED after a restart are swept by the next Promote on their
// slot once their offer window has passed.
func (e *Engine) Close() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}

// freeTables returns the usable tables at the slot that are neither
// booked by an active booking nor reserved by an outstanding waitlist
// offer.  Order (capacity asc, table number asc) is preserved from
// the store, so the first fitting table is the best fit.
func (e *Engine) freeTables(ctx context.Context, restaurantID uint64, date, slot string) ([]model.Table, error) {
	tables, err := e.store.UsableTables(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	active, err := e.store.ActiveBookings(ctx, restaurantID, date, slot)
	if err != nil {
		return nil, err
	}
	taken := make(map[uint64]struct{}, len(active))
	for _, b := range active {
		if b.TableID != nil {
			taken[*b.TableID] = struct{}{}
		}
	}
	offered, err := e.store.OfferedTableIDs(ctx, restaurantID, date, slot)
	if err != nil {
		return nil, err
	}
	for _, id := range offered {
		taken[id] = struct{}{}
	}
	free := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if _, ok := taken[t.ID]; !ok {
			free = append(free, t)
		}
	}
	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].TableNumber < free[j].TableNumber
	})
	return free, nil
}

// bestFit picks the smallest free table that seats the party, or nil.
func bestFit(free []model.Table, partySize uint32) *model.Table {
	for i := range free {
		if free[i].Capacity >= partySize {
			return &free[i]
		}
	}
	return nil
}
