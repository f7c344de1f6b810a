package model

import "time"

// Restaurant represents a venue owned by a user.  A restaurant
// carries its own table inventory, weekly operating hours and
// per-date overrides.  SlotMinutes controls the granularity of
// bookable time slots; requests whose minute component is not
// aligned to it are rejected at the API boundary.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user ID of the restaurant owner.
//  Name        – unique name of the restaurant per owner.
//  SlotMinutes – booking slot granularity in minutes (default 15).
//  CreatedAt   – timestamp when the restaurant was created.
//  UpdatedAt   – timestamp of last update.
type Restaurant struct {
	ID          uint64    // restaurants.id
	OwnerID     uint64    // restaurants.owner_id
	Name        string    // restaurants.name
	SlotMinutes uint32    // restaurants.slot_minutes
	CreatedAt   time.Time // restaurants.created_at
	UpdatedAt   time.Time // restaurants.updated_at
}

// DefaultSlotMinutes is used when a restaurant is created without an
// explicit slot granularity.
const DefaultSlotMinutes uint32 = 15
