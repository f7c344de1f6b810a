package model

import "time"

// OperatingHours holds the weekly opening pattern for a restaurant.
// There is at most one row per (restaurant, weekday).  Times are
// stored as "HH:MM" strings in the restaurant's local wall clock.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant these hours belong to.
//  Weekday      – day of week, 0 (Sunday) through 6 (Saturday).
//  OpensAt      – opening time ("HH:MM").
//  ClosesAt     – closing time ("HH:MM"); bookings are accepted in
//                 [OpensAt, ClosesAt).
//  IsClosed     – the restaurant does not open on this weekday.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type OperatingHours struct {
	ID           uint64    // operating_hours.id
	RestaurantID uint64    // operating_hours.restaurant_id
	Weekday      uint8     // operating_hours.weekday (0-6)
	OpensAt      string    // operating_hours.opens_at
	ClosesAt     string    // operating_hours.closes_at
	IsClosed     bool      // operating_hours.is_closed
	CreatedAt    time.Time // operating_hours.created_at
	UpdatedAt    time.Time // operating_hours.updated_at
}

// ClosedDate marks a specific calendar date as fully closed,
// overriding both custom and weekly hours.  Dates are "YYYY-MM-DD"
// strings.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the closure applies to.
//  Date         – the closed date ("YYYY-MM-DD").
//  Reason       – optional human-readable reason.
//  CreatedAt    – creation timestamp.
type ClosedDate struct {
	ID           uint64    // closed_dates.id
	RestaurantID uint64    // closed_dates.restaurant_id
	Date         string    // closed_dates.date
	Reason       *string   // closed_dates.reason (nullable)
	CreatedAt    time.Time // closed_dates.created_at
}

// CustomHours overrides the weekly pattern for a single date.  A
// ClosedDate entry for the same date takes precedence.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the override applies to.
//  Date         – the overridden date ("YYYY-MM-DD").
//  OpensAt      – opening time for that date ("HH:MM").
//  ClosesAt     – closing time for that date ("HH:MM").
//  IsClosed     – the restaurant does not open on this date.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type CustomHours struct {
	ID           uint64    // custom_hours.id
	RestaurantID uint64    // custom_hours.restaurant_id
	Date         string    // custom_hours.date
	OpensAt      string    // custom_hours.opens_at
	ClosesAt     string    // custom_hours.closes_at
	IsClosed     bool      // custom_hours.is_closed
	CreatedAt    time.Time // custom_hours.created_at
	UpdatedAt    time.Time // custom_hours.updated_at
}
