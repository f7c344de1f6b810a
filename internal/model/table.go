package model

import "time"

// TableStatus describes the physical state of a dining table.  It is
// mutated by staff operations only; booking commitment is tracked via
// Bookings, never by flipping a table's status.
type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"   // usable and sellable
	TableOccupied    TableStatus = "OCCUPIED"    // physically occupied (walk-in, staff note)
	TableReserved    TableStatus = "RESERVED"    // blocked by staff outside the booking flow
	TableMaintenance TableStatus = "MAINTENANCE" // out of service
)

// ValidTableStatus reports whether s is one of the known statuses.
func ValidTableStatus(s TableStatus) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableMaintenance:
		return true
	}
	return false
}

// Table describes a physical dining table in a restaurant.  Tables
// are uniquely identified by their restaurant and table number.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant to which this table belongs.
//  TableNumber  – number of the table within the restaurant.
//  Capacity     – number of guests the table seats (positive).
//  Status       – physical status (AVAILABLE, OCCUPIED, RESERVED, MAINTENANCE).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64      // tables.id
	RestaurantID uint64      // tables.restaurant_id
	TableNumber  uint32      // tables.table_number
	Capacity     uint32      // tables.capacity
	Status       TableStatus // tables.status
	CreatedAt    time.Time   // tables.created_at
	UpdatedAt    time.Time   // tables.updated_at
}
