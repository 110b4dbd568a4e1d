package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// AllocationRepo provides access to booking_nights, the per-night
// inventory ownership rows. The table's partial uniqueness constraint
// over active (room_id, night) pairs is the system's sole cross-caller
// correctness guarantee; every insert here is a potential loser of a
// check-then-act race and maps the duplicate-key error to ErrNightTaken.
//
// is_active is a nullable flag: 1 while the row holds inventory, NULL
// once released. Released rows are kept for history and never block the
// unique index again.
type AllocationRepo struct {
	db *sql.DB
}

// NewAllocationRepo returns a new AllocationRepo bound to the database.
func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

// CreateBulkTx inserts one active row per night in a single statement.
// It returns ErrNightTaken when any night is already actively allocated
// to another booking. Passing an empty slice has no effect and returns
// nil. The caller must commit or roll back the transaction; on
// ErrNightTaken the transaction must be rolled back since the statement
// failed mid-flight.
func (r *AllocationRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, nights []model.NightAllocation) error {
	if len(nights) == 0 {
		return nil
	}
	query := `INSERT INTO booking_nights
	          (booking_id, room_id, night, is_active, base_rate_cents, extras_cents, taxes_cents, total_cents) VALUES `
	args := make([]any, 0, len(nights)*8)
	for i, n := range nights {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, 1, ?, ?, ?, ?)"
		args = append(args, n.BookingID, n.RoomID, n.Night.Format(dateLayout),
			n.BaseRateCents, n.ExtrasCents, n.TaxesCents, n.TotalCents)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrNightTaken
		}
		return err
	}
	return nil
}

// DeactivateByBookingTx releases every active night of a booking back to
// inventory by setting is_active to NULL. Rows are never deleted on
// cancellation so the financial history survives.
func (r *AllocationRepo) DeactivateByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE booking_nights SET is_active = NULL WHERE booking_id = ? AND is_active = 1`
	_, err := tx.ExecContext(ctx, q, bookingID)
	return err
}

// DeleteByBookingTx hard-deletes all night rows of a booking. Only the
// move operation uses this, after the replacement rows for the new
// room/date range have been inserted.
func (r *AllocationRepo) DeleteByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `DELETE FROM booking_nights WHERE booking_id = ?`
	_, err := tx.ExecContext(ctx, q, bookingID)
	return err
}

// CountActiveByBookingTx returns how many active night rows a booking
// currently holds. Finalize uses it to detect bookings whose nights were
// already allocated at creation time.
func (r *AllocationRepo) CountActiveByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM booking_nights WHERE booking_id = ? AND is_active = 1`
	var n int
	if err := tx.QueryRowContext(ctx, q, bookingID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListByBooking returns all night rows of a booking ordered by night,
// active and released alike.
func (r *AllocationRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.NightAllocation, error) {
	const q = `SELECT id, booking_id, room_id, night, is_active,
	                  base_rate_cents, extras_cents, taxes_cents, total_cents
	           FROM booking_nights WHERE booking_id = ? ORDER BY night`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.NightAllocation, 0)
	for rows.Next() {
		var n model.NightAllocation
		var active sql.NullInt64
		if err := rows.Scan(&n.ID, &n.BookingID, &n.RoomID, &n.Night, &active,
			&n.BaseRateCents, &n.ExtrasCents, &n.TaxesCents, &n.TotalCents); err != nil {
			return nil, err
		}
		n.Active = active.Valid && active.Int64 == 1
		out = append(out, n)
	}
	return out, rows.Err()
}
