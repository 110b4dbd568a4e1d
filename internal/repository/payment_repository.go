package repository

import (
	"context"
	"database/sql"
)

// PaymentRepo stores the minimal payment records kept for bookings going
// through the online-payment branch. The provider-side checkout state
// lives upstream; only PENDING/PAID transitions happen here, and only
// inside lifecycle transactions.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreatePendingTx inserts a PENDING payment row for a booking.
func (r *PaymentRepo) CreatePendingTx(ctx context.Context, tx *sql.Tx, bookingID uint64, amountCents int64) error {
	const q = `INSERT INTO payments (booking_id, status, amount_cents) VALUES (?, 'PENDING', ?)`
	_, err := tx.ExecContext(ctx, q, bookingID, amountCents)
	return err
}

// MarkPaidTx flips the booking's payment row to PAID and records the
// provider reference. A booking without a payment row (the pay-at-property
// path) is a no-op.
func (r *PaymentRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, bookingID uint64, providerRef string) error {
	const q = `UPDATE payments SET status = 'PAID', provider_ref = ? WHERE booking_id = ?`
	_, err := tx.ExecContext(ctx, q, providerRef, bookingID)
	return err
}
