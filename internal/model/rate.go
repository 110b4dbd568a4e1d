package model

import "time"

// Weekday mask bits. Bit 0 is Monday through bit 6 Sunday, the usual ARI
// grid convention. AllWeekdays covers every day of the week.
const AllWeekdays uint8 = 0x7F

// WeekdayBit returns the mask bit for a calendar date's weekday.
func WeekdayBit(d time.Time) uint8 {
	// time.Weekday counts Sunday as 0; shift so Monday is bit 0.
	return 1 << uint((int(d.Weekday())+6)%7)
}

// RatePriceInterval is one priced cell range of the ARI grid. It applies
// to all nights inside its half-open [StartDate, EndDate) range whose
// weekday bit is set in WeekdayMask. When several intervals of the same
// plan and room type cover the same night, the highest Priority wins.
//
// Fields:
//  ID            – primary key identifier.
//  PropertyID    – owning property.
//  RoomTypeID    – room type being priced.
//  RatePlanID    – plan this interval belongs to.
//  StartDate     – first night covered (inclusive).
//  EndDate       – first night not covered (exclusive).
//  WeekdayMask   – 7-bit weekday applicability mask.
//  BaseRateCents – nightly base rate in cents.
//  MinLOS        – minimum length of stay in nights (0 = none).
//  Closed        – sale closed: the night has no sellable rate.
//  Priority      – higher values shadow lower ones on the same night.
type RatePriceInterval struct {
	ID            uint64    // rate_price_intervals.id
	PropertyID    uint64    // rate_price_intervals.property_id
	RoomTypeID    uint64    // rate_price_intervals.room_type_id
	RatePlanID    uint64    // rate_price_intervals.rate_plan_id
	StartDate     time.Time // rate_price_intervals.start_date
	EndDate       time.Time // rate_price_intervals.end_date
	WeekdayMask   uint8     // rate_price_intervals.weekday_mask
	BaseRateCents int64     // rate_price_intervals.base_rate_cents
	MinLOS        int       // rate_price_intervals.min_los
	Closed        bool      // rate_price_intervals.closed
	Priority      int       // rate_price_intervals.priority
}

// Covers reports whether the interval applies to the given night: the
// date falls inside [StartDate, EndDate) and the weekday bit matches.
func (iv *RatePriceInterval) Covers(night time.Time) bool {
	if night.Before(iv.StartDate) || !night.Before(iv.EndDate) {
		return false
	}
	return iv.WeekdayMask&WeekdayBit(night) != 0
}
