package model

import "time"

// SyncHealth classifies the synchronization state of a room with respect
// to external calendar feeds. The sync subsystem itself is out of process;
// this service only reads the health fields it leaves on the room.
type SyncHealth string

const (
	SyncHealthOK    SyncHealth = "ok"    // last sync succeeded recently
	SyncHealthNever SyncHealth = "never" // room has never synced
	SyncHealthError SyncHealth = "error" // last sync attempt failed
	SyncHealthStale SyncHealth = "stale" // last success older than the threshold
)

// SyncStaleAfter is how old a successful sync may be before the room is
// considered stale and excluded from safe-mode availability.
const SyncStaleAfter = 15 * time.Minute

// RoomType groups interchangeable rooms for availability reporting and
// rate assignment. Rate intervals are scoped to a room type, not to a
// single room.
//
// Fields:
//  ID            – primary key identifier.
//  PropertyID    – owning property.
//  Name          – display name, e.g. "Double Deluxe".
//  BaseOccupancy – number of adults included in the base rate.
type RoomType struct {
	ID            uint64 // room_types.id
	PropertyID    uint64 // room_types.property_id
	Name          string // room_types.name
	BaseOccupancy int    // room_types.base_occupancy
}

// Room is a single sellable unit. It belongs to exactly one property and
// optionally one room type; rooms without a type cannot be priced.
//
// Fields:
//  ID            – primary key identifier.
//  PropertyID    – owning property.
//  RoomTypeID    – optional room type (nil when unassigned).
//  Name          – display name, e.g. "101".
//  LastSyncedAt  – time of the last successful external sync (nil = never).
//  LastSyncError – error text of the last sync attempt ("" = succeeded).
type Room struct {
	ID            uint64     // rooms.id
	PropertyID    uint64     // rooms.property_id
	RoomTypeID    *uint64    // rooms.room_type_id (nullable)
	Name          string     // rooms.name
	LastSyncedAt  *time.Time // rooms.last_synced_at (nullable)
	LastSyncError string     // rooms.last_sync_error
}

// SyncHealthAt derives the room's synchronization health at the given
// instant: never synced, last attempt failed, last success too old, or ok.
func (r *Room) SyncHealthAt(now time.Time) SyncHealth {
	if r.LastSyncedAt == nil {
		return SyncHealthNever
	}
	if r.LastSyncError != "" {
		return SyncHealthError
	}
	if now.Sub(*r.LastSyncedAt) > SyncStaleAfter {
		return SyncHealthStale
	}
	return SyncHealthOK
}

// RoomBlock removes a room from sale for a half-open date range without a
// reservation. Manual blocks are created by staff; synced blocks mirror
// busy ranges ingested from external calendars.
type RoomBlock struct {
	ID        uint64    // room_blocks.id
	RoomID    uint64    // room_blocks.room_id
	Kind      string    // room_blocks.kind: "manual" or "synced"
	StartDate time.Time // room_blocks.start_date (inclusive)
	EndDate   time.Time // room_blocks.end_date (exclusive)
	Note      string    // room_blocks.note
}
