package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// QuoteBuilder prices a candidate stay. Satisfied by *QuoteEngine.
type QuoteBuilder interface {
	BuildQuote(ctx context.Context, in QuoteInput) (*model.Quote, error)
}

// BookingService owns the reservation state machine and the per-night
// allocation records. Each lifecycle operation runs inside one database
// transaction, so its compensating actions (deleting a booking that never
// reached a stable state, reactivating night rows after a failed move)
// are expressed as rollback.
//
// Concurrency model: multiple independent callers — staff actions, the
// public flow, payment callbacks — may race to allocate the same
// room-night. No in-process lock coordinates them and none is required:
// the active (room, night) uniqueness constraint in storage is the sole
// arbiter, and repository.ErrNightTaken is the expected signal of a lost
// race. Finalize additionally takes a row lock on the booking so
// duplicate webhook deliveries serialize.
type BookingService struct {
	Bookings    *repository.BookingRepo
	Allocations *repository.AllocationRepo
	Payments    *repository.PaymentRepo
	Quotes      QuoteBuilder

	// PublishConfirmed, when set, emits a booking.confirmed event after a
	// booking reaches CONFIRMED. Publish failures are logged and ignored:
	// the broker is not part of the transaction.
	PublishConfirmed func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// CreateInput is one booking creation request.
type CreateInput struct {
	PropertyID   uint64
	RoomID       uint64
	CheckIn      time.Time
	CheckOut     time.Time
	GuestName    string
	GuestContact string
	Adults       int
	ChildrenAges []int

	// RequirePayment creates the booking as PENDING_PAYMENT with a
	// persisted quote snapshot; allocations are only inserted by Finalize
	// once the payment callback arrives. Without it, creation allocates
	// immediately and confirms.
	RequirePayment bool
}

// FinalizeResult reports the outcome of a Finalize call.
type FinalizeResult struct {
	Confirmed        bool `json:"confirmed,omitempty"`
	AlreadyConfirmed bool `json:"already_confirmed,omitempty"`
}

// Create validates the request, prices the stay (which re-confirms
// availability), and commits the booking. The advisory availability
// check may be stale by the time of the allocation insert; when the
// insert loses the race the transaction rolls back, no booking row
// persists, and ErrAvailabilityConflict is returned.
func (s *BookingService) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	if in.GuestName == "" {
		return nil, fmt.Errorf("%w: guest_name is required", ErrValidation)
	}

	quote, err := s.Quotes.BuildQuote(ctx, QuoteInput{
		PropertyID:   in.PropertyID,
		RoomID:       in.RoomID,
		CheckIn:      in.CheckIn,
		CheckOut:     in.CheckOut,
		Adults:       in.Adults,
		ChildrenAges: in.ChildrenAges,
	})
	if err != nil {
		return nil, err
	}

	rec := &repository.BookingRecord{Booking: model.Booking{
		PropertyID:    in.PropertyID,
		RoomID:        in.RoomID,
		Status:        model.BookingHold,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		GuestName:     in.GuestName,
		GuestContact:  in.GuestContact,
		Adults:        in.Adults,
		ChildrenCount: len(in.ChildrenAges),
		SubtotalCents: quote.SubtotalCents,
		TaxesCents:    quote.TaxesCents,
		TotalCents:    quote.TotalCents,
		Currency:      quote.Currency,
	}}
	if in.RequirePayment {
		rec.Status = model.BookingPendingPayment
	}

	quoteJSON := ""
	if in.RequirePayment {
		// Finalize later re-creates the allocations from this snapshot.
		body, err := json.Marshal(quote.Nights)
		if err != nil {
			return nil, err
		}
		quoteJSON = string(body)
	}

	tx, err := s.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.Bookings.CreateTx(ctx, tx, rec, quoteJSON); err != nil {
		return nil, err
	}
	if in.RequirePayment {
		if err := s.Payments.CreatePendingTx(ctx, tx, rec.ID, quote.TotalCents); err != nil {
			return nil, err
		}
	} else {
		if err := s.Allocations.CreateBulkTx(ctx, tx, allocationsFromQuote(rec.ID, in.RoomID, quote.Nights)); err != nil {
			if errors.Is(err, repository.ErrNightTaken) {
				return nil, fmt.Errorf("%w: room %d", ErrAvailabilityConflict, in.RoomID)
			}
			return nil, err
		}
		if err := s.Bookings.UpdateStatusTx(ctx, tx, rec.ID, model.BookingConfirmed, nil); err != nil {
			return nil, err
		}
		rec.Status = model.BookingConfirmed
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if rec.Status == model.BookingConfirmed {
		s.publishConfirmed(ctx, &rec.Booking, "")
	}
	return &rec.Booking, nil
}

// Cancel is idempotent: cancelling a cancelled booking succeeds with no
// changes. Otherwise the booking turns CANCELLED and every active night
// allocation is deactivated — never deleted — which is what actually
// releases the nights back to inventory.
func (s *BookingService) Cancel(ctx context.Context, bookingID uint64) error {
	tx, err := s.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return err
	}
	if rec.Status == model.BookingCancelled {
		return nil // already satisfied; rollback releases the lock
	}
	if err := s.Bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingCancelled, nil); err != nil {
		return err
	}
	if err := s.Allocations.DeactivateByBookingTx(ctx, tx, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Move relocates a booking to a new room and/or date range. The
// destination is priced and availability-checked with the booking itself
// excluded, the old night rows are hard-deleted (the one place rows are
// deleted rather than deactivated), and replacement rows are inserted.
// Any failure rolls back to the original allocation.
func (s *BookingService) Move(ctx context.Context, bookingID, newRoomID uint64, newCheckIn, newCheckOut time.Time) (*model.Booking, error) {
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, err
	}
	if current.Status == model.BookingCancelled {
		return nil, fmt.Errorf("%w: cancelled booking cannot be moved", ErrValidation)
	}

	quote, err := s.Quotes.BuildQuote(ctx, QuoteInput{
		PropertyID:       current.PropertyID,
		RoomID:           newRoomID,
		CheckIn:          newCheckIn,
		CheckOut:         newCheckOut,
		Adults:           current.Adults,
		ChildrenAges:     nil, // ages are not persisted; extras re-price as adults-only
		ExcludeBookingID: bookingID,
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if rec.Status == model.BookingCancelled {
		return nil, fmt.Errorf("%w: cancelled booking cannot be moved", ErrValidation)
	}

	// Deactivate before deleting so the booking never collides with its
	// own rows when the new range overlaps the old one on the same room.
	if err := s.Allocations.DeactivateByBookingTx(ctx, tx, bookingID); err != nil {
		return nil, err
	}
	if err := s.Allocations.DeleteByBookingTx(ctx, tx, bookingID); err != nil {
		return nil, err
	}
	if err := s.Allocations.CreateBulkTx(ctx, tx, allocationsFromQuote(bookingID, newRoomID, quote.Nights)); err != nil {
		if errors.Is(err, repository.ErrNightTaken) {
			// Rollback reinstates the original night rows.
			return nil, fmt.Errorf("%w: room %d", ErrAvailabilityConflict, newRoomID)
		}
		return nil, err
	}
	if err := s.Bookings.UpdateStayTx(ctx, tx, bookingID, newRoomID, newCheckIn, newCheckOut,
		quote.SubtotalCents, quote.TaxesCents, quote.TotalCents); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	moved := rec.Booking
	moved.RoomID = newRoomID
	moved.CheckIn = newCheckIn
	moved.CheckOut = newCheckOut
	moved.SubtotalCents = quote.SubtotalCents
	moved.TaxesCents = quote.TaxesCents
	moved.TotalCents = quote.TotalCents
	return &moved, nil
}

// Finalize is the idempotency-critical payment confirmation step. It is
// invoked synchronously for pay-at-property bookings and asynchronously
// from possibly-duplicated payment-provider callbacks.
//
// The booking row is locked for the duration of the call. An already
// confirmed booking returns AlreadyConfirmed with zero side effects. For
// a booking still awaiting its allocations (the PENDING_PAYMENT branch)
// the night rows are inserted from the persisted quote snapshot; when
// that insert loses the race — legitimate, since time passed between
// quote and payment — the booking is cancelled and
// ErrAvailabilityConflict is returned. The captured payment must then be
// reconciled out of band; this routine never touches provider state.
func (s *BookingService) Finalize(ctx context.Context, bookingID uint64, paymentRef string) (*FinalizeResult, error) {
	tx, err := s.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, err
	}
	switch rec.Status {
	case model.BookingConfirmed:
		return &FinalizeResult{AlreadyConfirmed: true}, nil // rollback: no writes happened
	case model.BookingCancelled:
		return nil, fmt.Errorf("%w: booking %d was cancelled", ErrAvailabilityConflict, bookingID)
	}

	active, err := s.Allocations.CountActiveByBookingTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if active == 0 {
		nights, err := nightsFromSnapshot(rec)
		if err != nil {
			return nil, err
		}
		if err := s.Allocations.CreateBulkTx(ctx, tx, allocationsFromQuote(bookingID, rec.RoomID, nights)); err != nil {
			if errors.Is(err, repository.ErrNightTaken) {
				// Abort this transaction first, then cancel in a fresh one;
				// the deferred rollback becomes a no-op.
				_ = tx.Rollback()
				if cErr := s.Cancel(ctx, bookingID); cErr != nil {
					log.Printf("finalize: compensating cancel of booking %d failed: %v", bookingID, cErr)
				}
				return nil, fmt.Errorf("%w: booking %d lost its nights before payment completed", ErrAvailabilityConflict, bookingID)
			}
			return nil, err
		}
	}

	var ref *string
	if paymentRef != "" {
		ref = &paymentRef
	}
	if err := s.Bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingConfirmed, ref); err != nil {
		return nil, err
	}
	if err := s.Payments.MarkPaidTx(ctx, tx, bookingID, paymentRef); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	confirmed := rec.Booking
	confirmed.Status = model.BookingConfirmed
	s.publishConfirmed(ctx, &confirmed, paymentRef)
	return &FinalizeResult{Confirmed: true}, nil
}

// Get returns a booking with its night rows.
func (s *BookingService) Get(ctx context.Context, bookingID uint64) (*model.Booking, []model.NightAllocation, error) {
	rec, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, nil, err
	}
	nights, err := s.Allocations.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return &rec.Booking, nights, nil
}

// allocationsFromQuote maps quoted nights onto allocation rows carrying
// the full per-night financial snapshot.
func allocationsFromQuote(bookingID, roomID uint64, nights []model.QuoteNight) []model.NightAllocation {
	out := make([]model.NightAllocation, 0, len(nights))
	for _, n := range nights {
		out = append(out, model.NightAllocation{
			BookingID:     bookingID,
			RoomID:        roomID,
			Night:         n.Night,
			Active:        true,
			BaseRateCents: n.BaseRateCents,
			ExtrasCents:   n.ExtrasCents,
			TaxesCents:    n.TaxesCents,
			TotalCents:    n.TotalCents,
		})
	}
	return out
}

// nightsFromSnapshot recovers the quoted nights persisted on a booking
// awaiting payment.
func nightsFromSnapshot(rec *repository.BookingRecord) ([]model.QuoteNight, error) {
	if !rec.QuoteJSON.Valid || rec.QuoteJSON.String == "" {
		return nil, fmt.Errorf("booking %d has no stored quote snapshot", rec.ID)
	}
	var nights []model.QuoteNight
	if err := json.Unmarshal([]byte(rec.QuoteJSON.String), &nights); err != nil {
		return nil, fmt.Errorf("decode quote snapshot of booking %d: %w", rec.ID, err)
	}
	return nights, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, b *model.Booking, paymentRef string) {
	if s.PublishConfirmed == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		PropertyID:  b.PropertyID,
		RoomID:      b.RoomID,
		GuestName:   b.GuestName,
		CheckIn:     b.CheckIn.Format("2006-01-02"),
		CheckOut:    b.CheckOut.Format("2006-01-02"),
		Nights:      len(b.Nights()),
		TotalCents:  b.TotalCents,
		Currency:    b.Currency,
		PaymentRef:  paymentRef,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.PublishConfirmed(ctx, ev); err != nil {
		log.Printf("booking %d: publish confirmed event failed: %v", b.ID, err)
	}
}

// compile-time interface checks
var (
	_ QuoteBuilder = (*QuoteEngine)(nil)
	_ RoomChecker  = (*AvailabilityService)(nil)
)
