// Package queue defines message payloads exchanged over the message
// broker and the background consumer for payment-provider callbacks.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// confirmed. It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	PropertyID  uint64 `json:"property_id"`
	RoomID      uint64 `json:"room_id"`
	GuestName   string `json:"guest_name"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Nights      int    `json:"nights"`
	TotalCents  int64  `json:"total_cents"`
	Currency    string `json:"currency"`
	PaymentRef  string `json:"payment_ref,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}

// PaymentSucceededEvent is delivered by the payment subsystem when a
// checkout completes. Delivery is at-least-once: the same event may
// arrive more than once, and Finalize is idempotent for exactly that
// reason.
type PaymentSucceededEvent struct {
	BookingID  uint64 `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
	OccurredAt string `json:"occurred_at"`
}
