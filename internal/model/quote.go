package model

import "time"

// QuoteTTL is how long a stored quote stays retrievable. Quotes are
// advisory documents: they hold no inventory and must be revalidated
// against current availability before being turned into a booking.
const QuoteTTL = 30 * time.Minute

// QuoteNight is the financial breakdown of a single night of a quoted
// stay. Amounts are in cents of the property currency.
type QuoteNight struct {
	Night         time.Time `json:"night"`
	BaseRateCents int64     `json:"base_rate_cents"`
	ExtrasCents   int64     `json:"extras_cents"`
	TaxesCents    int64     `json:"taxes_cents"`
	TotalCents    int64     `json:"total_cents"`
	MinLOS        int       `json:"min_los,omitempty"`
}

// Quote is an ephemeral pricing document for a candidate stay. It is
// stored under an opaque token with a fixed TTL and is never a
// reservation hold.
type Quote struct {
	Token         string       `json:"token,omitempty"`
	PropertyID    uint64       `json:"property_id"`
	RoomID        uint64       `json:"room_id"`
	RoomTypeID    uint64       `json:"room_type_id"`
	CheckIn       time.Time    `json:"check_in"`
	CheckOut      time.Time    `json:"check_out"`
	Adults        int          `json:"adults"`
	ChildrenAges  []int        `json:"children_ages,omitempty"`
	Nights        []QuoteNight `json:"nights"`
	SubtotalCents int64        `json:"subtotal_cents"`
	TaxesCents    int64        `json:"taxes_cents"`
	TotalCents    int64        `json:"total_cents"`
	Currency      string       `json:"currency"`
	CreatedAt     time.Time    `json:"created_at"`
}
