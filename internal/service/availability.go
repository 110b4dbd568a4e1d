package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// RoomLister is the inventory read surface the resolver needs.
type RoomLister interface {
	ListByProperty(ctx context.Context, propertyID uint64) ([]repository.RoomRecord, error)
	ListRoomTypesByProperty(ctx context.Context, propertyID uint64) ([]repository.RoomTypeRecord, error)
}

// OccupancyLister reports which rooms have a non-cancelled booking
// overlapping a range.
type OccupancyLister interface {
	OccupiedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time, excludeBookingID uint64) (map[uint64]bool, error)
}

// BlockLister reports which rooms have a manual or synced block
// overlapping a range, with the block kind as value.
type BlockLister interface {
	BlockedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time) (map[uint64]string, error)
}

// AvailabilityInput is one availability question: which rooms of the
// property are free for the half-open [From, To) range. SafeMode
// additionally excludes rooms whose synchronization health is not ok.
// ExcludeBookingID removes one booking from the occupancy check so a
// move does not collide with itself.
type AvailabilityInput struct {
	PropertyID       uint64
	From             time.Time
	To               time.Time
	SafeMode         bool
	ExcludeBookingID uint64
}

// RoomSummary identifies one available room in a result.
type RoomSummary struct {
	RoomID uint64 `json:"room_id"`
	Name   string `json:"name"`
}

// RoomTypeAvailability reports per room type the total unit count and
// the rooms currently free for the range.
type RoomTypeAvailability struct {
	RoomTypeID     uint64        `json:"room_type_id"`
	Name           string        `json:"name"`
	TotalUnits     int           `json:"total_units"`
	AvailableRooms []RoomSummary `json:"available_rooms"`
}

// StopSellRoom names a room excluded from sale because of its external
// synchronization state, with the health reason.
type StopSellRoom struct {
	RoomID uint64 `json:"room_id"`
	Name   string `json:"name"`
	Reason string `json:"reason"` // "never", "error" or "stale"
}

// AvailabilityResult is the answer to an availability question.
type AvailabilityResult struct {
	ByRoomType    []RoomTypeAvailability `json:"by_room_type"`
	StopSellRooms []StopSellRoom         `json:"stop_sell_rooms"`
}

// AvailabilityService computes room availability from active bookings,
// manual and synced blocks, and each room's sync health. Every check it
// performs is an optimistic read: the storage uniqueness constraint on
// allocations, not this resolver, is what prevents double-booking.
type AvailabilityService struct {
	Rooms    RoomLister
	Bookings OccupancyLister
	Blocks   BlockLister
	Now      func() time.Time // defaults to time.Now when nil
}

func (s *AvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Resolve answers an availability question. A room is blocked when any
// non-cancelled booking or any block overlaps the range under the
// half-open test (start < to AND end > from, evaluated in storage). The
// stop-sell list is always reported; stop-sold rooms are removed from the
// available set only when SafeMode is on, since an active sale path
// legitimately ignores the safety margin. Zero configured rooms yields
// an empty result, not an error.
func (s *AvailabilityService) Resolve(ctx context.Context, in AvailabilityInput) (*AvailabilityResult, error) {
	if !in.To.After(in.From) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrValidation)
	}
	rooms, err := s.Rooms.ListByProperty(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	types, err := s.Rooms.ListRoomTypesByProperty(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.Bookings.OccupiedRoomIDs(ctx, in.PropertyID, in.From, in.To, in.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.Blocks.BlockedRoomIDs(ctx, in.PropertyID, in.From, in.To)
	if err != nil {
		return nil, err
	}

	now := s.now()
	byType := make(map[uint64]*RoomTypeAvailability, len(types))
	result := &AvailabilityResult{
		ByRoomType:    make([]RoomTypeAvailability, 0, len(types)),
		StopSellRooms: make([]StopSellRoom, 0),
	}
	for _, rt := range types {
		byType[rt.ID] = &RoomTypeAvailability{
			RoomTypeID:     rt.ID,
			Name:           rt.Name,
			AvailableRooms: make([]RoomSummary, 0),
		}
	}

	for i := range rooms {
		room := rooms[i].Model()
		if room.RoomTypeID == nil {
			continue // untyped rooms are not sellable units
		}
		ta, ok := byType[*room.RoomTypeID]
		if !ok {
			continue
		}
		ta.TotalUnits++

		stopSold := false
		if health := room.SyncHealthAt(now); health != model.SyncHealthOK {
			result.StopSellRooms = append(result.StopSellRooms, StopSellRoom{
				RoomID: room.ID,
				Name:   room.Name,
				Reason: string(health),
			})
			stopSold = true
		}
		if occupied[room.ID] {
			continue
		}
		if _, isBlocked := blocked[room.ID]; isBlocked {
			continue
		}
		if in.SafeMode && stopSold {
			continue
		}
		ta.AvailableRooms = append(ta.AvailableRooms, RoomSummary{RoomID: room.ID, Name: room.Name})
	}

	for _, rt := range types {
		result.ByRoomType = append(result.ByRoomType, *byType[rt.ID])
	}
	return result, nil
}

// IsRoomFree answers the single-room question the quote engine and the
// lifecycle manager ask before committing anything. The answer is
// advisory and may be stale by the time of the allocation insert.
func (s *AvailabilityService) IsRoomFree(ctx context.Context, propertyID, roomID uint64, from, to time.Time, safeMode bool, excludeBookingID uint64) (bool, error) {
	res, err := s.Resolve(ctx, AvailabilityInput{
		PropertyID:       propertyID,
		From:             from,
		To:               to,
		SafeMode:         safeMode,
		ExcludeBookingID: excludeBookingID,
	})
	if err != nil {
		return false, err
	}
	for _, rt := range res.ByRoomType {
		for _, r := range rt.AvailableRooms {
			if r.RoomID == roomID {
				return true, nil
			}
		}
	}
	return false, nil
}
