package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRestaurant(store *fakeStore) uint64 {
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	return rid
}

func allocate(t *testing.T, e *Engine, rid uint64, party uint32) *AllocateResult {
	t.Helper()
	res, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 1, Date: testDate, Time: testSlot, PartySize: party,
	})
	require.NoError(t, err)
	return res
}

func TestAllocate_BestFit(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 8, model.TableAvailable)
	small := store.addTable(rid, 2, 4, model.TableAvailable)
	store.addTable(rid, 3, 6, model.TableAvailable)
	e := New(store)

	res := allocate(t, e, rid, 3)
	require.NotNil(t, res.Booking)
	assert.Equal(t, model.AssignAuto, res.Method)
	require.NotNil(t, res.Booking.TableID)
	assert.Equal(t, small, *res.Booking.TableID, "smallest sufficient table wins")
	assert.Equal(t, model.BookingPending, res.Booking.Status)
}

func TestAllocate_BestFitTieBreaksOnTableNumber(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	later := store.addTable(rid, 5, 4, model.TableAvailable)
	first := store.addTable(rid, 2, 4, model.TableAvailable)
	_ = later
	e := New(store)

	res := allocate(t, e, rid, 4)
	require.NotNil(t, res.Booking)
	assert.Equal(t, first, *res.Booking.TableID, "equal capacity resolves by table number")
}

func TestAllocate_Closed(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.addTable(rid, 1, 4, model.TableAvailable)
	e := New(store)

	_, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 1, Date: testDate, Time: testSlot, PartySize: 2,
	})
	assert.ErrorIs(t, err, ErrRestaurantClosed)
}

func TestAllocate_ZeroPartySize(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	e := New(store)

	_, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 1, Date: testDate, Time: testSlot, PartySize: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidPartySize)
}

func TestAllocate_WaitlistFIFO(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 2, model.TableAvailable)
	e := New(store)

	allocate(t, e, rid, 2) // takes the only table

	first := allocate(t, e, rid, 2)
	require.NotNil(t, first.Entry)
	assert.Equal(t, model.AssignWaitlist, first.Method)
	assert.Equal(t, uint64(1), first.Entry.PriorityOrder)
	assert.Equal(t, model.WaitlistWaiting, first.Entry.Status)

	second := allocate(t, e, rid, 2)
	require.NotNil(t, second.Entry)
	assert.Equal(t, uint64(2), second.Entry.PriorityOrder, "strict arrival order")
}

func TestAllocate_OversizedPartyAlwaysQueues(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 8, model.TableAvailable)
	e := New(store)

	res := allocate(t, e, rid, 10)
	require.NotNil(t, res.Entry, "no table combining: a party larger than every table queues")

	// Promotion can never satisfy it while the largest table seats 8.
	promoted, err := e.Promote(context.Background(), rid, testDate, testSlot)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Equal(t, model.WaitlistWaiting, store.entry(res.Entry.ID).Status)
}

func TestAllocate_ManualAssignment(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	small := store.addTable(rid, 1, 2, model.TableAvailable)
	big := store.addTable(rid, 2, 8, model.TableAvailable)
	e := New(store)

	// Staff picks the big table for a party of two, bypassing best-fit.
	res, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 1, Date: testDate, Time: testSlot,
		PartySize: 2, TableID: &big,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Booking)
	assert.Equal(t, model.AssignManual, res.Method)
	assert.Equal(t, big, *res.Booking.TableID)
	assert.Equal(t, model.BookingConfirmed, res.Booking.Status)

	// Same table again at the same slot must be refused.
	_, err = e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 2, Date: testDate, Time: testSlot,
		PartySize: 2, TableID: &big,
	})
	assert.ErrorIs(t, err, ErrTableUnavailable)

	// A maintenance table is never assignable.
	broken := store.addTable(rid, 3, 4, model.TableMaintenance)
	_, err = e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 2, Date: testDate, Time: testSlot,
		PartySize: 2, TableID: &broken,
	})
	assert.ErrorIs(t, err, ErrTableUnavailable)
	_ = small
}

func TestAllocate_WalkInWithoutTable(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 2, model.TableAvailable)
	e := New(store)

	allocate(t, e, rid, 2) // occupy the only table

	res, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 3, Date: testDate, Time: testSlot,
		PartySize: 2, WalkIn: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Booking, "walk-ins are admitted even with no free table")
	assert.Nil(t, res.Booking.TableID, "awaiting manual seating")
	assert.Equal(t, model.BookingConfirmed, res.Booking.Status)
}

func TestAllocate_RetriesOnceOnConflict(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 4, model.TableAvailable)
	e := New(store)

	store.createConflicts = 1
	res := allocate(t, e, rid, 2)
	require.NotNil(t, res.Booking, "single conflict is absorbed by the retry")

	store.createConflicts = 2
	_, err := e.Allocate(context.Background(), AllocateRequest{
		RestaurantID: rid, CustomerID: 1, Date: testDate, Time: "20:00", PartySize: 2,
	})
	assert.ErrorIs(t, err, ErrAllocationConflict, "second conflict surfaces to the caller")
}

// One table that fits a single party, many concurrent requests:
// exactly one booking may win, everyone else queues, and the table is
// never double-booked.
func TestAllocate_ConcurrentSingleTable(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 4, model.TableAvailable)
	e := New(store)

	const n = 32
	results := make([]*AllocateResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Allocate(context.Background(), AllocateRequest{
				RestaurantID: rid, CustomerID: uint64(i + 1),
				Date: testDate, Time: testSlot, PartySize: 4,
			})
		}(i)
	}
	wg.Wait()

	bookings := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	priorities := make(map[uint64]bool)
	for _, res := range results {
		if res.Booking != nil {
			bookings++
			continue
		}
		require.NotNil(t, res.Entry)
		assert.False(t, priorities[res.Entry.PriorityOrder], "duplicate priority_order")
		priorities[res.Entry.PriorityOrder] = true
	}
	assert.Equal(t, 1, bookings, "exactly one allocation wins the table")
	assert.Len(t, priorities, n-1)
}

func TestTransition_Lifecycle(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 4, model.TableAvailable)
	e := New(store)

	res := allocate(t, e, rid, 2)
	id := res.Booking.ID

	b, err := e.Transition(context.Background(), id, model.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	b, err = e.Transition(context.Background(), id, model.BookingSeated)
	require.NoError(t, err)
	assert.Equal(t, model.BookingSeated, b.Status)

	b, err = e.Complete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, b.Status)

	// Terminal states are immutable.
	_, err = e.Transition(context.Background(), id, model.BookingSeated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_IdempotentAndSinglePromotion(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	store.addTable(rid, 1, 4, model.TableAvailable)
	notifier := &recordNotifier{}
	e := New(store, WithNotifier(notifier), WithOfferTTL(time.Hour))
	defer e.Close()

	res := allocate(t, e, rid, 4)
	queued := allocate(t, e, rid, 2)
	require.NotNil(t, queued.Entry)

	b, err := e.Cancel(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
	assert.Equal(t, 1, notifier.offerCount(), "cancellation promotes the waiting entry")
	assert.Equal(t, model.WaitlistNotified, store.entry(queued.Entry.ID).Status)

	// Second cancel: no-op, no extra promotion attempt.
	b, err = e.Cancel(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
	assert.Equal(t, 1, notifier.offerCount())
}

// The full scenario from the drawing board: one 4-top, a booking, a
// queued party, a cancellation, an offer and its confirmation.
func TestScenario_CancelPromoteConfirm(t *testing.T) {
	store := newFakeStore()
	rid := openRestaurant(store)
	table := store.addTable(rid, 1, 4, model.TableAvailable)
	notifier := &recordNotifier{}
	e := New(store, WithNotifier(notifier), WithOfferTTL(time.Hour))
	defer e.Close()

	first := allocate(t, e, rid, 4)
	require.NotNil(t, first.Booking)
	assert.Equal(t, model.AssignAuto, first.Booking.AssignmentMethod)

	second := allocate(t, e, rid, 2)
	require.NotNil(t, second.Entry)
	assert.Equal(t, uint64(1), second.Entry.PriorityOrder)

	_, err := e.Cancel(context.Background(), first.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.WaitlistNotified, store.entry(second.Entry.ID).Status)

	booking, err := e.ConfirmOffer(context.Background(), second.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignWaitlist, booking.AssignmentMethod)
	assert.True(t, booking.WasOnWaitlist)
	require.NotNil(t, booking.TableID)
	assert.Equal(t, table, *booking.TableID)
	assert.Equal(t, model.WaitlistConfirmed, store.entry(second.Entry.ID).Status)
}
