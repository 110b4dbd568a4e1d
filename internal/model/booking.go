package model

import "time"

// Booking statuses. CANCELLED is terminal; re-running a transition that is
// already satisfied is a no-op, never an error.
const (
	BookingHold           = "HOLD"
	BookingPendingPayment = "PENDING_PAYMENT"
	BookingConfirmed      = "CONFIRMED"
	BookingCancelled      = "CANCELLED"
)

// Booking is one stay request for a single room over a half-open
// [CheckIn, CheckOut) range. Amounts are the financial snapshot taken at
// creation time; they are never re-derived from the rate grid afterwards.
//
// Fields:
//  ID            – primary key identifier.
//  PropertyID    – property the stay belongs to.
//  RoomID        – room being occupied.
//  Status        – HOLD, PENDING_PAYMENT, CONFIRMED or CANCELLED.
//  CheckIn       – arrival date (first night, inclusive).
//  CheckOut      – departure date (exclusive: never an occupied night).
//  GuestName     – lead guest identity, required.
//  GuestContact  – phone or e-mail, optional.
//  Adults        – adult count, at least 1.
//  ChildrenCount – number of children in the party.
//  SubtotalCents – sum of raw per-night subtotals.
//  TaxesCents    – sum of per-night tax amounts.
//  TotalCents    – grand total payable.
//  Currency      – ISO 4217 code copied from the property.
//  PaymentRef    – external payment reference, if any.
type Booking struct {
	ID            uint64    // bookings.id
	PropertyID    uint64    // bookings.property_id
	RoomID        uint64    // bookings.room_id
	Status        string    // bookings.status
	CheckIn       time.Time // bookings.check_in
	CheckOut      time.Time // bookings.check_out
	GuestName     string    // bookings.guest_name
	GuestContact  string    // bookings.guest_contact
	Adults        int       // bookings.adults
	ChildrenCount int       // bookings.children_count
	SubtotalCents int64     // bookings.subtotal_cents
	TaxesCents    int64     // bookings.taxes_cents
	TotalCents    int64     // bookings.total_cents
	Currency      string    // bookings.currency
	PaymentRef    *string   // bookings.payment_ref (nullable)
	CreatedAt     time.Time // bookings.created_at
	UpdatedAt     time.Time // bookings.updated_at
}

// Nights returns every occupied night of the stay in order. A booking
// with CheckOut = D never yields night D.
func (b *Booking) Nights() []time.Time {
	var out []time.Time
	for d := b.CheckIn; d.Before(b.CheckOut); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// NightAllocation is the atomic unit of inventory ownership: one room, one
// calendar night, one booking. For a given room and night at most one
// allocation may be active at a time; that rule is enforced by a storage
// uniqueness constraint, not by application checks. Cancellation
// deactivates rows instead of deleting them to preserve history.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – owning booking.
//  RoomID        – room occupied on the night.
//  Night         – the calendar night (date, UTC).
//  Active        – true while the row holds inventory.
//  BaseRateCents – resolved nightly base rate.
//  ExtrasCents   – adult and child extras for the night.
//  TaxesCents    – tax amount for the night.
//  TotalCents    – night total.
type NightAllocation struct {
	ID            uint64    // booking_nights.id
	BookingID     uint64    // booking_nights.booking_id
	RoomID        uint64    // booking_nights.room_id
	Night         time.Time // booking_nights.night
	Active        bool      // booking_nights.is_active (NULL when released)
	BaseRateCents int64     // booking_nights.base_rate_cents
	ExtrasCents   int64     // booking_nights.extras_cents
	TaxesCents    int64     // booking_nights.taxes_cents
	TotalCents    int64     // booking_nights.total_cents
}

// Payment statuses tracked for the online-payment branch.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Payment is the minimal record kept for a booking that goes through the
// online-payment branch. Provider-specific checkout state lives upstream;
// only the finalize-on-payment contract is consumed here.
type Payment struct {
	ID          uint64    // payments.id
	BookingID   uint64    // payments.booking_id
	Status      string    // payments.status
	ProviderRef string    // payments.provider_ref
	AmountCents int64     // payments.amount_cents
	CreatedAt   time.Time // payments.created_at
	UpdatedAt   time.Time // payments.updated_at
}
