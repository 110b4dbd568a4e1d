package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// BookingRepo provides CRUD operations for bookings. Mutations run inside
// caller-owned transactions so the lifecycle service can make each
// operation atomic. All timestamps are stored in UTC; check_in/check_out
// are DATE columns interpreted as half-open [check_in, check_out).
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingRecord mirrors the bookings table, including the persisted
// per-night quote snapshot used by Finalize.
type BookingRecord struct {
	model.Booking
	QuoteJSON sql.NullString
}

const bookingColumns = `id, property_id, room_id, status, check_in, check_out,
	guest_name, guest_contact, adults, children_count,
	subtotal_cents, taxes_cents, total_cents, currency,
	payment_ref, quote_json, created_at, updated_at`

func scanBooking(scan func(dest ...any) error) (*BookingRecord, error) {
	var rec BookingRecord
	var payRef sql.NullString
	if err := scan(&rec.ID, &rec.PropertyID, &rec.RoomID, &rec.Status,
		&rec.CheckIn, &rec.CheckOut, &rec.GuestName, &rec.GuestContact,
		&rec.Adults, &rec.ChildrenCount, &rec.SubtotalCents, &rec.TaxesCents,
		&rec.TotalCents, &rec.Currency, &payRef, &rec.QuoteJSON,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if payRef.Valid {
		ref := payRef.String
		rec.PaymentRef = &ref
	}
	return &rec, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the record. quoteJSON may
// be empty; it carries the serialized per-night snapshot for bookings
// awaiting payment.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *BookingRecord, quoteJSON string) error {
	const q = `INSERT INTO bookings
	           (property_id, room_id, status, check_in, check_out, guest_name, guest_contact,
	            adults, children_count, subtotal_cents, taxes_cents, total_cents, currency, quote_json)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var qj any
	if quoteJSON != "" {
		qj = quoteJSON
	}
	res, err := tx.ExecContext(ctx, q, rec.PropertyID, rec.RoomID, rec.Status,
		rec.CheckIn.Format(dateLayout), rec.CheckOut.Format(dateLayout),
		rec.GuestName, rec.GuestContact, rec.Adults, rec.ChildrenCount,
		rec.SubtotalCents, rec.TaxesCents, rec.TotalCents, rec.Currency, qj)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// GetByID returns a booking by primary key. ErrBookingNotFound is
// returned when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID uint64) (*BookingRecord, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	rec, err := scanBooking(r.db.QueryRowContext(ctx, q, bookingID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetForUpdateTx loads a booking with an exclusive row lock held for the
// remainder of the transaction. This is the per-booking lock Finalize and
// the other lifecycle transitions rely on to serialize duplicate or
// concurrent invocations.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*BookingRecord, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	rec, err := scanBooking(tx.QueryRowContext(ctx, q, bookingID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateStatusTx sets the booking status and, when ref is non-nil, the
// payment reference.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string, ref *string) error {
	if ref != nil {
		const q = `UPDATE bookings SET status = ?, payment_ref = ? WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, status, *ref, bookingID)
		return err
	}
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, bookingID)
	return err
}

// UpdateStayTx rewrites the room, dates and financial snapshot of a
// booking after a successful move.
func (r *BookingRepo) UpdateStayTx(ctx context.Context, tx *sql.Tx, bookingID, roomID uint64, checkIn, checkOut time.Time, subtotal, taxes, total int64) error {
	const q = `UPDATE bookings
	           SET room_id = ?, check_in = ?, check_out = ?,
	               subtotal_cents = ?, taxes_cents = ?, total_cents = ?
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, roomID,
		checkIn.Format(dateLayout), checkOut.Format(dateLayout),
		subtotal, taxes, total, bookingID)
	return err
}

// OccupiedRoomIDs returns the room IDs of a property with a
// non-cancelled booking overlapping [from, to). excludeBookingID, when
// non-zero, removes one booking from consideration so a move does not
// collide with itself. The overlap predicate is the standard half-open
// test: check_in < to AND check_out > from.
func (r *BookingRepo) OccupiedRoomIDs(ctx context.Context, propertyID uint64, from, to time.Time, excludeBookingID uint64) (map[uint64]bool, error) {
	q := `SELECT DISTINCT room_id FROM bookings
	      WHERE property_id = ? AND status <> 'CANCELLED'
	        AND check_in < ? AND check_out > ?`
	args := []any{propertyID, to.Format(dateLayout), from.Format(dateLayout)}
	if excludeBookingID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeBookingID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
