package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// maxStayNights caps a single quoted stay.
const maxStayNights = 365

// RoomGetter is the room read surface the quote engine needs.
type RoomGetter interface {
	GetForProperty(ctx context.Context, propertyID, roomID uint64) (*repository.RoomRecord, error)
	GetRoomType(ctx context.Context, roomTypeID uint64) (*repository.RoomTypeRecord, error)
	GetPropertyCurrency(ctx context.Context, propertyID uint64) (string, error)
}

// RateSource feeds the rate-resolution grid.
type RateSource interface {
	GetPlanByCode(ctx context.Context, propertyID uint64, code string) (*model.RatePlan, error)
	IntervalsForRange(ctx context.Context, roomTypeID, planID uint64, from, to time.Time) ([]model.RatePriceInterval, error)
}

// SettingsSource supplies per-property pricing configuration.
type SettingsSource interface {
	Commercial(ctx context.Context, propertyID uint64) (*model.CommercialSettings, error)
	ChildRules(ctx context.Context, propertyID uint64) ([]model.ChildPricingRule, error)
	TaxRules(ctx context.Context, propertyID uint64) ([]model.TaxRule, error)
}

// RoomChecker answers the advisory single-room availability question.
type RoomChecker interface {
	IsRoomFree(ctx context.Context, propertyID, roomID uint64, from, to time.Time, safeMode bool, excludeBookingID uint64) (bool, error)
}

// QuoteInput is one candidate stay to price.
type QuoteInput struct {
	PropertyID   uint64
	RoomID       uint64
	CheckIn      time.Time
	CheckOut     time.Time
	Adults       int
	ChildrenAges []int

	// ExcludeBookingID removes one booking from the availability check;
	// the move operation prices the destination while excluding itself.
	ExcludeBookingID uint64
}

// QuoteEngine turns a candidate stay into a night-by-night financial
// breakdown after re-confirming availability. The output is a snapshot,
// not a hold: it must be revalidated at commit time.
type QuoteEngine struct {
	Rooms        RoomGetter
	Rates        RateSource
	Settings     SettingsSource
	Availability RoomChecker
}

// BuildQuote validates the input, confirms the room is currently free
// (safeMode off — this call path is an active sale, not a safety margin)
// and prices every night of [CheckIn, CheckOut).
func (e *QuoteEngine) BuildQuote(ctx context.Context, in QuoteInput) (*model.Quote, error) {
	if err := validateStay(in.CheckIn, in.CheckOut, in.Adults, in.ChildrenAges); err != nil {
		return nil, err
	}

	room, err := e.Rooms.GetForProperty(ctx, in.PropertyID, in.RoomID)
	if err == repository.ErrRoomNotFound {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, in.RoomID)
	}
	if err != nil {
		return nil, err
	}
	if !room.RoomTypeID.Valid {
		return nil, fmt.Errorf("%w: room %d has no room type and cannot be priced", ErrValidation, in.RoomID)
	}
	roomType, err := e.Rooms.GetRoomType(ctx, uint64(room.RoomTypeID.Int64))
	if err != nil {
		return nil, err
	}

	free, err := e.Availability.IsRoomFree(ctx, in.PropertyID, in.RoomID, in.CheckIn, in.CheckOut, false, in.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, fmt.Errorf("%w: room %d for %s to %s", ErrRoomUnavailable,
			in.RoomID, in.CheckIn.Format("2006-01-02"), in.CheckOut.Format("2006-01-02"))
	}

	plan, err := e.Rates.GetPlanByCode(ctx, in.PropertyID, model.DefaultPlanCode)
	if err == repository.ErrPlanNotFound {
		return nil, fmt.Errorf("%w: default rate plan", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	intervals, err := e.Rates.IntervalsForRange(ctx, roomType.ID, plan.ID, in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	settings, err := e.Settings.Commercial(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	childRules, err := e.Settings.ChildRules(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	taxRules, err := e.Settings.TaxRules(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	currency, err := e.Rooms.GetPropertyCurrency(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}

	taxRate := effectiveTaxRate(taxRules)
	q := &model.Quote{
		PropertyID:   in.PropertyID,
		RoomID:       in.RoomID,
		RoomTypeID:   roomType.ID,
		CheckIn:      in.CheckIn,
		CheckOut:     in.CheckOut,
		Adults:       in.Adults,
		ChildrenAges: in.ChildrenAges,
		Currency:     currency,
		CreatedAt:    time.Now().UTC(),
	}
	for d := in.CheckIn; d.Before(in.CheckOut); d = d.AddDate(0, 0, 1) {
		cell := ResolveNight(intervals, d)
		if cell.Closed {
			return nil, fmt.Errorf("%w: night %s is closed for sale", ErrRoomUnavailable, d.Format("2006-01-02"))
		}
		night := PriceNight(cell, d, in.Adults, in.ChildrenAges, roomType.BaseOccupancy, settings, childRules, taxRate)
		q.Nights = append(q.Nights, night)
		q.SubtotalCents += night.BaseRateCents + night.ExtrasCents
		q.TaxesCents += night.TaxesCents
		q.TotalCents += night.TotalCents
	}
	return q, nil
}

// validateStay enforces the caller-level stay preconditions shared by
// quoting, creation and move.
func validateStay(checkIn, checkOut time.Time, adults int, childrenAges []int) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrValidation)
	}
	if !checkOut.After(checkIn) {
		return fmt.Errorf("%w: check_out must be after check_in", ErrValidation)
	}
	if int(checkOut.Sub(checkIn).Hours()/24) > maxStayNights {
		return fmt.Errorf("%w: stay exceeds %d nights", ErrValidation, maxStayNights)
	}
	if adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	for _, age := range childrenAges {
		if age < 0 {
			return fmt.Errorf("%w: negative child age", ErrValidation)
		}
	}
	return nil
}

// effectiveTaxRate sums all active percentage tax rules into one factor,
// e.g. 7.5% + 2.5% -> 0.10.
func effectiveTaxRate(rules []model.TaxRule) float64 {
	var pct float64
	for _, r := range rules {
		if r.Active {
			pct += r.Percent
		}
	}
	return pct / 100
}

// PriceNight computes the financial breakdown of a single night. It is
// pure: every input is passed explicitly.
//
// The raw subtotal is the resolved base rate (zero when the grid has no
// rate for the night) plus per-adult extras above the base occupancy plus
// first-match child fees. When prices are configured tax-inclusive the
// tax is extracted from the raw subtotal; otherwise it is added on top.
func PriceNight(cell RateCell, night time.Time, adults int, childrenAges []int, baseOccupancy int, settings *model.CommercialSettings, childRules []model.ChildPricingRule, taxRate float64) model.QuoteNight {
	out := model.QuoteNight{Night: night, MinLOS: cell.MinLOS}
	if cell.HasRate {
		out.BaseRateCents = cell.BaseRateCents
	}

	extraAdults := adults - baseOccupancy
	if extraAdults < 0 {
		extraAdults = 0
	}
	out.ExtrasCents = int64(extraAdults) * settings.ExtraAdultFeeCents

	// First matching rule wins, in stored order. This is deliberately
	// order-dependent, not "smallest matching range".
	for _, age := range childrenAges {
		for _, rule := range childRules {
			if age >= rule.MinAge && age <= rule.MaxAge {
				out.ExtrasCents += rule.FeeCents
				break
			}
		}
	}

	raw := out.BaseRateCents + out.ExtrasCents
	if settings.PricesIncludeTaxes {
		out.TaxesCents = roundCents(float64(raw) * taxRate / (1 + taxRate))
		out.TotalCents = raw
	} else {
		out.TaxesCents = roundCents(float64(raw) * taxRate)
		out.TotalCents = raw + out.TaxesCents
	}
	return out
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
