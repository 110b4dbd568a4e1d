package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// stubQuotes returns a fixed quote without touching any dependency.
type stubQuotes struct {
	quote *model.Quote
	err   error
	last  QuoteInput
}

func (s *stubQuotes) BuildQuote(ctx context.Context, in QuoteInput) (*model.Quote, error) {
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	q := *s.quote
	return &q, nil
}

func twoNightQuote() *model.Quote {
	return &model.Quote{
		PropertyID: 1, RoomID: 11, RoomTypeID: 5,
		CheckIn: day("2026-06-10"), CheckOut: day("2026-06-12"),
		Adults: 2,
		Nights: []model.QuoteNight{
			{Night: day("2026-06-10"), BaseRateCents: 10000, TaxesCents: 1000, TotalCents: 11000},
			{Night: day("2026-06-11"), BaseRateCents: 10000, TaxesCents: 1000, TotalCents: 11000},
		},
		SubtotalCents: 20000, TaxesCents: 2000, TotalCents: 22000,
		Currency: "EUR",
	}
}

func emptyBookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "property_id", "room_id", "status", "check_in", "check_out",
		"guest_name", "guest_contact", "adults", "children_count",
		"subtotal_cents", "taxes_cents", "total_cents", "currency",
		"payment_ref", "quote_json", "created_at", "updated_at",
	})
}

func bookingRow(id uint64, status string, quoteJSON interface{}) *sqlmock.Rows {
	return emptyBookingRows().AddRow(id, 1, 11, status, day("2026-06-10"), day("2026-06-12"),
		"Ada Guest", "ada@example.com", 2, 0, 20000, 2000, 22000, "EUR",
		nil, quoteJSON, time.Now(), time.Now())
}

func TestCreate_ConfirmsAndAllocatesNights(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(77, 1))
	// Checkout day is not a night: exactly the two stay nights are inserted.
	mock.ExpectExec("INSERT INTO booking_nights").
		WithArgs(
			uint64(77), uint64(11), "2026-06-10", int64(10000), int64(0), int64(1000), int64(11000),
			uint64(77), uint64(11), "2026-06-11", int64(10000), int64(0), int64(1000), int64(11000),
		).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(model.BookingConfirmed, uint64(77)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var published *queue.BookingConfirmedEvent
	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
		PublishConfirmed: func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			published = &ev
			return nil
		},
	}

	b, err := svc.Create(context.Background(), CreateInput{
		PropertyID: 1, RoomID: 11,
		CheckIn: day("2026-06-10"), CheckOut: day("2026-06-12"),
		GuestName: "Ada Guest", Adults: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != 77 || b.Status != model.BookingConfirmed {
		t.Fatalf("unexpected booking: id=%d status=%s", b.ID, b.Status)
	}
	if b.TotalCents != 22000 {
		t.Errorf("total = %d, want 22000", b.TotalCents)
	}
	if published == nil || published.BookingID != 77 {
		t.Errorf("confirmed event not published: %+v", published)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_ConflictLeavesNoBookingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(78, 1))
	// A concurrent booking took one of the nights between the advisory
	// check and the insert.
	mock.ExpectExec("INSERT INTO booking_nights").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	_, err = svc.Create(context.Background(), CreateInput{
		PropertyID: 1, RoomID: 11,
		CheckIn: day("2026-06-10"), CheckOut: day("2026-06-12"),
		GuestName: "Ada Guest", Adults: 2,
	})
	if !errors.Is(err, ErrAvailabilityConflict) {
		t.Fatalf("err = %v, want ErrAvailabilityConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreate_RequirePaymentDefersAllocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(79, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(uint64(79), int64(22000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	published := false
	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
		PublishConfirmed: func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			published = true
			return nil
		},
	}

	b, err := svc.Create(context.Background(), CreateInput{
		PropertyID: 1, RoomID: 11,
		CheckIn: day("2026-06-10"), CheckOut: day("2026-06-12"),
		GuestName: "Ada Guest", Adults: 2,
		RequirePayment: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BookingPendingPayment {
		t.Fatalf("status = %s, want PENDING_PAYMENT", b.Status)
	}
	if published {
		t.Error("confirmed event must not fire before payment")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancel_ReleasesNights(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(model.BookingCancelled, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE booking_nights SET is_active = NULL").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	if err := svc.Cancel(context.Background(), 9); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancel_IdempotentOnCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingCancelled, nil))
	mock.ExpectRollback()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	// Second cancel succeeds with zero writes.
	if err := svc.Cancel(context.Background(), 9); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancel_UnknownBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(404)).
		WillReturnRows(emptyBookingRows())
	mock.ExpectRollback()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	err = svc.Cancel(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFinalize_PendingPaymentAllocatesFromSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	snapshot, _ := json.Marshal(twoNightQuote().Nights)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingPendingPayment, string(snapshot)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking_nights").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO booking_nights").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("UPDATE bookings SET status = \\?, payment_ref = \\?").
		WithArgs(model.BookingConfirmed, "pay_123", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments SET status = 'PAID'").
		WithArgs("pay_123", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var published *queue.BookingConfirmedEvent
	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
		PublishConfirmed: func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			published = &ev
			return nil
		},
	}

	res, err := svc.Finalize(context.Background(), 9, "pay_123")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !res.Confirmed || res.AlreadyConfirmed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if published == nil || published.PaymentRef != "pay_123" {
		t.Errorf("confirmed event not published with payment ref: %+v", published)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFinalize_AlreadyConfirmedHasNoSideEffects(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectRollback()

	published := false
	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
		PublishConfirmed: func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			published = true
			return nil
		},
	}

	res, err := svc.Finalize(context.Background(), 9, "pay_123")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !res.AlreadyConfirmed || res.Confirmed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if published {
		t.Error("duplicate finalize must not republish the event")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFinalize_ConflictCancelsBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	snapshot, _ := json.Marshal(twoNightQuote().Nights)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingPendingPayment, string(snapshot)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM booking_nights").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO booking_nights").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	// Compensating cancel in a fresh transaction.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingPendingPayment, string(snapshot)))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(model.BookingCancelled, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE booking_nights SET is_active = NULL").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	_, err = svc.Finalize(context.Background(), 9, "pay_123")
	if !errors.Is(err, ErrAvailabilityConflict) {
		t.Fatalf("err = %v, want ErrAvailabilityConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMove_ConflictRestoresOriginalAllocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectExec("UPDATE booking_nights SET is_active = NULL").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM booking_nights").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO booking_nights").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	stub := &stubQuotes{quote: twoNightQuote()}
	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      stub,
	}

	_, err = svc.Move(context.Background(), 9, 12, day("2026-06-10"), day("2026-06-12"))
	if !errors.Is(err, ErrAvailabilityConflict) {
		t.Fatalf("err = %v, want ErrAvailabilityConflict", err)
	}
	if stub.last.ExcludeBookingID != 9 {
		t.Errorf("move must exclude itself from the availability check, got %d", stub.last.ExcludeBookingID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMove_SuccessRewritesStay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id = \\?").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WithArgs(uint64(9)).
		WillReturnRows(bookingRow(9, model.BookingConfirmed, nil))
	mock.ExpectExec("UPDATE booking_nights SET is_active = NULL").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM booking_nights").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO booking_nights").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(uint64(12), "2026-06-10", "2026-06-12", int64(20000), int64(2000), int64(22000), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := &BookingService{
		Bookings:    repository.NewBookingRepo(db),
		Allocations: repository.NewAllocationRepo(db),
		Payments:    repository.NewPaymentRepo(db),
		Quotes:      &stubQuotes{quote: twoNightQuote()},
	}

	moved, err := svc.Move(context.Background(), 9, 12, day("2026-06-10"), day("2026-06-12"))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.RoomID != 12 {
		t.Errorf("room = %d, want 12", moved.RoomID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
