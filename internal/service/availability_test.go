package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

type fakeInventory struct {
	rooms []repository.RoomRecord
	types []repository.RoomTypeRecord
}

func (f *fakeInventory) ListByProperty(ctx context.Context, propertyID uint64) ([]repository.RoomRecord, error) {
	return f.rooms, nil
}

func (f *fakeInventory) ListRoomTypesByProperty(ctx context.Context, propertyID uint64) ([]repository.RoomTypeRecord, error) {
	return f.types, nil
}

type fakeOccupancy struct {
	occupied map[uint64]bool
	excluded uint64 // records the exclusion passed in
}

func (f *fakeOccupancy) OccupiedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time, excludeBookingID uint64) (map[uint64]bool, error) {
	f.excluded = excludeBookingID
	return f.occupied, nil
}

type fakeBlocks struct{ blocked map[uint64]string }

func (f *fakeBlocks) BlockedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time) (map[uint64]string, error) {
	return f.blocked, nil
}

func syncedRoom(id, typeID uint64, name string, syncedAt time.Time) repository.RoomRecord {
	return repository.RoomRecord{
		ID:           id,
		PropertyID:   1,
		RoomTypeID:   sql.NullInt64{Int64: int64(typeID), Valid: true},
		Name:         name,
		LastSyncedAt: sql.NullTime{Time: syncedAt, Valid: true},
	}
}

func newTestResolver(rooms []repository.RoomRecord, occupied map[uint64]bool, blocked map[uint64]string, now time.Time) (*AvailabilityService, *fakeOccupancy) {
	occ := &fakeOccupancy{occupied: occupied}
	return &AvailabilityService{
		Rooms: &fakeInventory{
			rooms: rooms,
			types: []repository.RoomTypeRecord{{ID: 5, PropertyID: 1, Name: "Double", BaseOccupancy: 2}},
		},
		Bookings: occ,
		Blocks:   &fakeBlocks{blocked: blocked},
		Now:      func() time.Time { return now },
	}, occ
}

func TestResolve_OccupiedAndBlockedRoomsExcluded(t *testing.T) {
	now := day("2026-06-01").Add(12 * time.Hour)
	rooms := []repository.RoomRecord{
		syncedRoom(11, 5, "101", now),
		syncedRoom(12, 5, "102", now),
		syncedRoom(13, 5, "103", now),
	}
	svc, _ := newTestResolver(rooms,
		map[uint64]bool{12: true},
		map[uint64]string{13: "manual"},
		now)

	res, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-12"),
	})
	require.NoError(t, err)
	require.Len(t, res.ByRoomType, 1)

	ta := res.ByRoomType[0]
	assert.Equal(t, 3, ta.TotalUnits)
	require.Len(t, ta.AvailableRooms, 1)
	assert.Equal(t, uint64(11), ta.AvailableRooms[0].RoomID)
}

func TestResolve_InvalidRange(t *testing.T) {
	svc, _ := newTestResolver(nil, nil, nil, day("2026-06-01"))

	_, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-12"), To: day("2026-06-10"),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-10"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolve_ZeroRooms(t *testing.T) {
	svc, _ := newTestResolver(nil, nil, nil, day("2026-06-01"))

	res, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-12"),
	})
	require.NoError(t, err)
	require.Len(t, res.ByRoomType, 1)
	assert.Zero(t, res.ByRoomType[0].TotalUnits)
	assert.Empty(t, res.ByRoomType[0].AvailableRooms)
	assert.Empty(t, res.StopSellRooms)
}

func TestResolve_StopSellReportedButNotExcluded(t *testing.T) {
	now := day("2026-06-01").Add(12 * time.Hour)
	stale := syncedRoom(11, 5, "101", now.Add(-time.Hour))
	never := repository.RoomRecord{ID: 12, PropertyID: 1, RoomTypeID: sql.NullInt64{Int64: 5, Valid: true}, Name: "102"}
	errored := syncedRoom(13, 5, "103", now)
	errored.LastSyncError = "feed timeout"

	svc, _ := newTestResolver([]repository.RoomRecord{stale, never, errored}, nil, nil, now)

	res, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-12"),
	})
	require.NoError(t, err)

	reasons := map[uint64]string{}
	for _, s := range res.StopSellRooms {
		reasons[s.RoomID] = s.Reason
	}
	assert.Equal(t, map[uint64]string{11: "stale", 12: "never", 13: "error"}, reasons)

	// Without safe mode all three still sell.
	assert.Len(t, res.ByRoomType[0].AvailableRooms, 3)
}

func TestResolve_SafeModeExcludesStopSell(t *testing.T) {
	now := day("2026-06-01").Add(12 * time.Hour)
	healthy := syncedRoom(11, 5, "101", now)
	stale := syncedRoom(12, 5, "102", now.Add(-time.Hour))

	svc, _ := newTestResolver([]repository.RoomRecord{healthy, stale}, nil, nil, now)

	res, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-12"),
		SafeMode: true,
	})
	require.NoError(t, err)
	require.Len(t, res.ByRoomType[0].AvailableRooms, 1)
	assert.Equal(t, uint64(11), res.ByRoomType[0].AvailableRooms[0].RoomID)
	// The stop-sell report is unchanged by the mode.
	require.Len(t, res.StopSellRooms, 1)
	assert.Equal(t, uint64(12), res.StopSellRooms[0].RoomID)
}

func TestResolve_UntypedRoomsSkipped(t *testing.T) {
	now := day("2026-06-01")
	untyped := repository.RoomRecord{ID: 11, PropertyID: 1, Name: "storage",
		LastSyncedAt: sql.NullTime{Time: now, Valid: true}}

	svc, _ := newTestResolver([]repository.RoomRecord{untyped}, nil, nil, now)

	res, err := svc.Resolve(context.Background(), AvailabilityInput{
		PropertyID: 1, From: day("2026-06-10"), To: day("2026-06-12"),
	})
	require.NoError(t, err)
	assert.Zero(t, res.ByRoomType[0].TotalUnits)
}

func TestIsRoomFree_PassesExclusionThrough(t *testing.T) {
	now := day("2026-06-01").Add(12 * time.Hour)
	svc, occ := newTestResolver([]repository.RoomRecord{syncedRoom(11, 5, "101", now)}, nil, nil, now)

	free, err := svc.IsRoomFree(context.Background(), 1, 11, day("2026-06-10"), day("2026-06-12"), false, 42)
	require.NoError(t, err)
	assert.True(t, free)
	assert.Equal(t, uint64(42), occ.excluded)

	free, err = svc.IsRoomFree(context.Background(), 1, 99, day("2026-06-10"), day("2026-06-12"), false, 0)
	require.NoError(t, err)
	assert.False(t, free)
}
