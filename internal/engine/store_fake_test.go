package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// fakeStore is an in-memory Store for engine tests.  All methods are
// guarded by one mutex; WithTx simply runs fn, since the engine's
// slot locks provide the serialization under test.
type fakeStore struct {
	mu          sync.Mutex
	restaurants map[uint64]model.Restaurant
	weekly      map[uint64]map[uint8]model.OperatingHours
	closedDates map[uint64]map[string]model.ClosedDate
	customHours map[uint64]map[string]model.CustomHours
	tables      map[uint64]model.Table
	bookings    map[uint64]model.Booking
	entries     map[uint64]model.WaitingListEntry
	nextID      uint64

	// createConflicts injects that many ErrAllocationConflict
	// results from CreateBooking before letting inserts through.
	createConflicts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		restaurants: make(map[uint64]model.Restaurant),
		weekly:      make(map[uint64]map[uint8]model.OperatingHours),
		closedDates: make(map[uint64]map[string]model.ClosedDate),
		customHours: make(map[uint64]map[string]model.CustomHours),
		tables:      make(map[uint64]model.Table),
		bookings:    make(map[uint64]model.Booking),
		entries:     make(map[uint64]model.WaitingListEntry),
	}
}

func (s *fakeStore) id() uint64 { s.nextID++; return s.nextID }

func (s *fakeStore) addRestaurant(slotMinutes uint32) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.restaurants[id] = model.Restaurant{ID: id, OwnerID: 1, Name: "r", SlotMinutes: slotMinutes}
	return id
}

// openDaily configures every weekday with the same window.
func (s *fakeStore) openDaily(restaurantID uint64, opensAt, closesAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weekly[restaurantID] == nil {
		s.weekly[restaurantID] = make(map[uint8]model.OperatingHours)
	}
	for wd := uint8(0); wd < 7; wd++ {
		s.weekly[restaurantID][wd] = model.OperatingHours{
			ID: s.id(), RestaurantID: restaurantID, Weekday: wd,
			OpensAt: opensAt, ClosesAt: closesAt,
		}
	}
}

func (s *fakeStore) setWeekday(restaurantID uint64, wd uint8, h model.OperatingHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weekly[restaurantID] == nil {
		s.weekly[restaurantID] = make(map[uint8]model.OperatingHours)
	}
	h.RestaurantID = restaurantID
	h.Weekday = wd
	s.weekly[restaurantID][wd] = h
}

func (s *fakeStore) addClosedDate(restaurantID uint64, date, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closedDates[restaurantID] == nil {
		s.closedDates[restaurantID] = make(map[string]model.ClosedDate)
	}
	cd := model.ClosedDate{ID: s.id(), RestaurantID: restaurantID, Date: date}
	if reason != "" {
		cd.Reason = &reason
	}
	s.closedDates[restaurantID][date] = cd
}

func (s *fakeStore) addCustomHours(restaurantID uint64, ch model.CustomHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customHours[restaurantID] == nil {
		s.customHours[restaurantID] = make(map[string]model.CustomHours)
	}
	ch.RestaurantID = restaurantID
	s.customHours[restaurantID][ch.Date] = ch
}

func (s *fakeStore) addTable(restaurantID uint64, number, capacity uint32, status model.TableStatus) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.tables[id] = model.Table{
		ID: id, RestaurantID: restaurantID, TableNumber: number,
		Capacity: capacity, Status: status,
	}
	return id
}

func (s *fakeStore) booking(id uint64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *fakeStore) entry(id uint64) model.WaitingListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// Store implementation.

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *fakeStore) Restaurant(_ context.Context, id uint64) (*model.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return &r, nil
}

func (s *fakeStore) WeeklyHours(_ context.Context, restaurantID uint64, weekday uint8) (*model.OperatingHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.weekly[restaurantID][weekday]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *fakeStore) ClosedDate(_ context.Context, restaurantID uint64, date string) (*model.ClosedDate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cd, ok := s.closedDates[restaurantID][date]
	if !ok {
		return nil, nil
	}
	return &cd, nil
}

func (s *fakeStore) CustomHours(_ context.Context, restaurantID uint64, date string) (*model.CustomHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.customHours[restaurantID][date]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (s *fakeStore) UsableTables(_ context.Context, restaurantID uint64) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Table
	for _, t := range s.tables {
		if t.RestaurantID == restaurantID && t.Status == model.TableAvailable {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].TableNumber < out[j].TableNumber
	})
	return out, nil
}

func (s *fakeStore) ActiveBookings(_ context.Context, restaurantID uint64, date, slot string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.RestaurantID == restaurantID && b.Date == date && b.Time == slot && model.ActiveBookingStatus(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) BookingByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (s *fakeStore) CreateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createConflicts > 0 {
		s.createConflicts--
		return ErrAllocationConflict
	}
	b.ID = s.id()
	b.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeStore) UpdateBookingStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return nil
}

func (s *fakeStore) MaxPriorityOrder(_ context.Context, restaurantID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var max uint64
	for _, e := range s.entries {
		if e.RestaurantID == restaurantID && e.PriorityOrder > max {
			max = e.PriorityOrder
		}
	}
	return max, nil
}

func (s *fakeStore) CreateWaitlistEntry(_ context.Context, e *model.WaitingListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.UpdatedAt = time.Now().UTC()
	s.entries[e.ID] = *e
	return nil
}

func (s *fakeStore) WaitingEntries(_ context.Context, restaurantID uint64, date, slot string) ([]model.WaitingListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WaitingListEntry
	for _, e := range s.entries {
		if e.RestaurantID == restaurantID && e.Date == date && e.Time == slot && e.Status == model.WaitlistWaiting {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityOrder < out[j].PriorityOrder })
	return out, nil
}

func (s *fakeStore) WaitingCount(_ context.Context, restaurantID uint64, date, slot string) (uint32, error) {
	entries, _ := s.WaitingEntries(nil, restaurantID, date, slot)
	return uint32(len(entries)), nil
}

func (s *fakeStore) OfferedTableIDs(_ context.Context, restaurantID uint64, date, slot string) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint64
	for _, e := range s.entries {
		if e.RestaurantID == restaurantID && e.Date == date && e.Time == slot &&
			e.Status == model.WaitlistNotified && e.OfferedTableID != nil {
			out = append(out, *e.OfferedTableID)
		}
	}
	return out, nil
}

func (s *fakeStore) WaitlistEntryByID(_ context.Context, id uint64) (*model.WaitingListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrWaitlistEntryNotFound
	}
	return &e, nil
}

func (s *fakeStore) UpdateWaitlistEntry(_ context.Context, id uint64, status model.WaitlistStatus, offeredTableID *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrWaitlistEntryNotFound
	}
	e.Status = status
	e.OfferedTableID = offeredTableID
	e.UpdatedAt = time.Now().UTC()
	s.entries[id] = e
	return nil
}

// recordNotifier captures engine events for assertions.
type recordNotifier struct {
	mu       sync.Mutex
	offers   []model.WaitingListEntry
	confirms []model.Booking
}

func (n *recordNotifier) WaitlistOffer(_ context.Context, e model.WaitingListEntry, _ model.Table) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offers = append(n.offers, e)
}

func (n *recordNotifier) BookingConfirmed(_ context.Context, b model.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirms = append(n.confirms, b)
}

func (n *recordNotifier) offerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.offers)
}
