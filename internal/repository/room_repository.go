package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RoomRepo provides read access to rooms and room types. Rooms carry the
// synchronization-health fields written by the external sync subsystem;
// this service only reads them. All timestamps are stored in UTC.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// RoomRecord mirrors the rooms table. Business logic should convert it
// to model.Room via Model.
type RoomRecord struct {
	ID            uint64
	PropertyID    uint64
	RoomTypeID    sql.NullInt64
	Name          string
	LastSyncedAt  sql.NullTime
	LastSyncError string
}

// Model converts the persistence record into the domain representation.
func (rec *RoomRecord) Model() model.Room {
	m := model.Room{
		ID:            rec.ID,
		PropertyID:    rec.PropertyID,
		Name:          rec.Name,
		LastSyncError: rec.LastSyncError,
	}
	if rec.RoomTypeID.Valid {
		id := uint64(rec.RoomTypeID.Int64)
		m.RoomTypeID = &id
	}
	if rec.LastSyncedAt.Valid {
		t := rec.LastSyncedAt.Time.UTC()
		m.LastSyncedAt = &t
	}
	return m
}

const roomColumns = `id, property_id, room_type_id, name, last_synced_at, last_sync_error`

func scanRoom(scan func(dest ...any) error) (*RoomRecord, error) {
	var rec RoomRecord
	if err := scan(&rec.ID, &rec.PropertyID, &rec.RoomTypeID, &rec.Name,
		&rec.LastSyncedAt, &rec.LastSyncError); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID returns a single room. ErrRoomNotFound is returned when no row
// exists.
func (r *RoomRepo) GetByID(ctx context.Context, roomID uint64) (*RoomRecord, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rec, err := scanRoom(r.db.QueryRowContext(ctx, q, roomID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetForProperty returns a room only when it belongs to the given
// property; otherwise ErrRoomNotFound. The property scoping is what turns
// a cross-tenant room ID into a not-found instead of leaking existence.
func (r *RoomRepo) GetForProperty(ctx context.Context, propertyID, roomID uint64) (*RoomRecord, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND property_id = ?`
	rec, err := scanRoom(r.db.QueryRowContext(ctx, q, roomID, propertyID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByProperty returns all rooms of a property ordered by name. Zero
// configured rooms yields an empty slice, not an error.
func (r *RoomRepo) ListByProperty(ctx context.Context, propertyID uint64) ([]RoomRecord, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE property_id = ? ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomRecord, 0)
	for rows.Next() {
		rec, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// RoomTypeRecord mirrors the room_types table.
type RoomTypeRecord struct {
	ID            uint64
	PropertyID    uint64
	Name          string
	BaseOccupancy int
}

// GetRoomType returns a room type by ID, or sql.ErrNoRows when missing.
func (r *RoomRepo) GetRoomType(ctx context.Context, roomTypeID uint64) (*RoomTypeRecord, error) {
	const q = `SELECT id, property_id, name, base_occupancy FROM room_types WHERE id = ?`
	var rec RoomTypeRecord
	err := r.db.QueryRowContext(ctx, q, roomTypeID).Scan(
		&rec.ID, &rec.PropertyID, &rec.Name, &rec.BaseOccupancy)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRoomTypesByProperty returns all room types of a property.
func (r *RoomRepo) ListRoomTypesByProperty(ctx context.Context, propertyID uint64) ([]RoomTypeRecord, error) {
	const q = `SELECT id, property_id, name, base_occupancy FROM room_types WHERE property_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomTypeRecord, 0)
	for rows.Next() {
		var rec RoomTypeRecord
		if err := rows.Scan(&rec.ID, &rec.PropertyID, &rec.Name, &rec.BaseOccupancy); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetPropertyCurrency returns the currency code configured for a property.
func (r *RoomRepo) GetPropertyCurrency(ctx context.Context, propertyID uint64) (string, error) {
	const q = `SELECT currency FROM properties WHERE id = ?`
	var cur string
	if err := r.db.QueryRowContext(ctx, q, propertyID).Scan(&cur); err != nil {
		return "", err
	}
	return cur, nil
}
