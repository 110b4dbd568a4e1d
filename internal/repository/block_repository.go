package repository

import (
	"context"
	"database/sql"
	"time"
)

// BlockRepo provides access to room_blocks: date ranges during which a
// room is withdrawn from sale without a reservation. Manual blocks come
// from staff, synced blocks from external calendar ingestion. Both use
// the half-open [start_date, end_date) convention.
type BlockRepo struct {
	db *sql.DB
}

// NewBlockRepo returns a new BlockRepo bound to the given database.
func NewBlockRepo(db *sql.DB) *BlockRepo { return &BlockRepo{db: db} }

// BlockedRoomIDs returns, for a property, the set of room IDs that have
// at least one block overlapping [from, to). The overlap predicate is the
// standard half-open test: start < to AND end > from.
func (r *BlockRepo) BlockedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time) (map[uint64]string, error) {
	const q = `SELECT b.room_id, b.kind
	           FROM room_blocks b
	           JOIN rooms rm ON rm.id = b.room_id
	           WHERE rm.property_id = ? AND b.start_date < ? AND b.end_date > ?`
	rows, err := r.db.QueryContext(ctx, q, propertyID, to.Format(dateLayout), from.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]string)
	for rows.Next() {
		var id uint64
		var kind string
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, err
		}
		// A manual block outranks a synced one when both are present.
		if prev, ok := out[id]; !ok || prev != "manual" {
			out[id] = kind
		}
	}
	return out, rows.Err()
}

// Create inserts a block for a room. Used by staff tooling and by the
// sync ingestion boundary.
func (r *BlockRepo) Create(ctx context.Context, roomID uint64, kind string, start, end time.Time, note string) (uint64, error) {
	const q = `INSERT INTO room_blocks (room_id, kind, start_date, end_date, note) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, roomID, kind, start.Format(dateLayout), end.Format(dateLayout), note)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
