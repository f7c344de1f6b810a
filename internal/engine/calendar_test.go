package engine

import (
	"context"
	"testing"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-09-04 is a Friday.
const (
	testDate = "2026-09-04"
	testSlot = "19:00"
)

func TestIsOpen_WeeklyHours(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	e := New(store)

	open, _, err := e.IsOpen(context.Background(), rid, testDate, "11:00")
	require.NoError(t, err)
	assert.True(t, open, "opening time is inclusive")

	open, reason, err := e.IsOpen(context.Background(), rid, testDate, "22:00")
	require.NoError(t, err)
	assert.False(t, open, "closing time is exclusive")
	assert.Contains(t, reason, "11:00-22:00")

	open, _, err = e.IsOpen(context.Background(), rid, testDate, "10:45")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestIsOpen_ClosedDateBeatsEverything(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	store.addCustomHours(rid, model.CustomHours{Date: testDate, OpensAt: "09:00", ClosesAt: "23:00"})
	store.addClosedDate(rid, testDate, "private event")
	e := New(store)

	open, reason, err := e.IsOpen(context.Background(), rid, testDate, testSlot)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Contains(t, reason, "private event")
}

func TestIsOpen_CustomHoursOverrideWeekly(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	store.addCustomHours(rid, model.CustomHours{Date: testDate, OpensAt: "18:00", ClosesAt: "20:00"})
	e := New(store)

	open, _, err := e.IsOpen(context.Background(), rid, testDate, "12:00")
	require.NoError(t, err)
	assert.False(t, open, "weekly window must not apply when custom hours exist")

	open, _, err = e.IsOpen(context.Background(), rid, testDate, "19:00")
	require.NoError(t, err)
	assert.True(t, open)
}

func TestIsOpen_CustomClosedFlag(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	store.addCustomHours(rid, model.CustomHours{Date: testDate, IsClosed: true})
	e := New(store)

	open, _, err := e.IsOpen(context.Background(), rid, testDate, testSlot)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestIsOpen_WeekdayMarkedClosed(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	store.setWeekday(rid, 5, model.OperatingHours{IsClosed: true}) // Friday
	e := New(store)

	open, reason, err := e.IsOpen(context.Background(), rid, testDate, testSlot)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Contains(t, reason, "Friday")
}

func TestIsOpen_NoHoursConfigured(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	e := New(store)

	open, reason, err := e.IsOpen(context.Background(), rid, testDate, testSlot)
	require.NoError(t, err, "missing configuration must not be an error")
	assert.False(t, open, "no hours means closed, the safer default")
	assert.Contains(t, reason, "no operating hours configured")
}

func TestAlignedToGranularity(t *testing.T) {
	assert.True(t, AlignedToGranularity("19:00", 15))
	assert.True(t, AlignedToGranularity("19:45", 15))
	assert.False(t, AlignedToGranularity("19:10", 15))
	assert.True(t, AlignedToGranularity("19:30", 30))
	assert.False(t, AlignedToGranularity("19:15", 30))
	assert.False(t, AlignedToGranularity("bogus", 15))
}

func TestDayWindow_WeeklyAndCustom(t *testing.T) {
	store := newFakeStore()
	rid := store.addRestaurant(15)
	store.openDaily(rid, "11:00", "22:00")
	e := New(store)

	open, opens, closes, err := e.DayWindow(context.Background(), rid, testDate)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, "11:00", opens)
	assert.Equal(t, "22:00", closes)

	// Custom hours replace the weekly window for that one date.
	store.addCustomHours(rid, model.CustomHours{Date: testDate, OpensAt: "18:00", ClosesAt: "20:00"})
	open, opens, closes, err = e.DayWindow(context.Background(), rid, testDate)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, "18:00", opens)
	assert.Equal(t, "20:00", closes)

	// A closed date wins over everything.
	store.addClosedDate(rid, testDate, "private event")
	open, _, _, err = e.DayWindow(context.Background(), rid, testDate)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestDayWindow_BadDate(t *testing.T) {
	e := New(newFakeStore())
	_, _, _, err := e.DayWindow(context.Background(), 1, "04.09.2026")
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}
