// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for routing; the default exchange with the queue
// name as routing key keeps the topology declaration-free.
const (
	BookingConfirmedQueue = "booking.confirmed"
	WaitlistNotifiedQueue = "waitlist.notified"
)

// BookingConfirmedEvent is published when a booking reaches CONFIRMED.
// It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64  `json:"booking_id"`
	RestaurantID     uint64  `json:"restaurant_id"`
	CustomerID       uint64  `json:"customer_id"`
	TableID          *uint64 `json:"table_id"`
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	PartySize        uint32  `json:"party_size"`
	AssignmentMethod string  `json:"assignment_method"`
	WasOnWaitlist    bool    `json:"was_on_waitlist"`
	ConfirmedAt      string  `json:"confirmed_at"`
}

// WaitlistNotifiedEvent is published when a waiting party is promoted
// and offered a table.  The customer has until the offer TTL to
// confirm before the table moves to the next entry.
type WaitlistNotifiedEvent struct {
	EntryID       uint64 `json:"entry_id"`
	RestaurantID  uint64 `json:"restaurant_id"`
	CustomerID    uint64 `json:"customer_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     uint32 `json:"party_size"`
	TableID       uint64 `json:"table_id"`
	TableNumber   uint32 `json:"table_number"`
	TableCapacity uint32 `json:"table_capacity"`
	NotifiedAt    string `json:"notified_at"`
}
