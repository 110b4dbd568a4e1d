package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// RateCell is the resolved ARI grid cell for one room type and night.
//
// A cell with HasRate=false and Closed=false means no interval matched
// the night. The grid currently treats such a night as sellable at zero —
// see ResolveNight for the rule.
type RateCell struct {
	HasRate       bool
	Closed        bool
	BaseRateCents int64
	MinLOS        int
}

// ResolveNight resolves the applicable cell for a single night from the
// given interval set. It is pure and deterministic: identical inputs
// always yield an identical cell.
//
// Candidates are the intervals whose [StartDate, EndDate) contains the
// night and whose weekday mask matches the night's weekday. The candidate
// with the highest Priority wins; between equal priorities the lowest
// interval ID wins. A winning interval with Closed=true makes the night
// unsellable regardless of its numeric rate.
//
// Zero candidates yield the zero cell: not closed, no rate. Downstream
// this prices the night at zero rather than refusing to sell it. That is
// the inherited behavior and is pinned by tests; making unpriced nights
// unsellable is a pending product decision, so do not change the rule
// here without flipping those tests deliberately.
func ResolveNight(intervals []model.RatePriceInterval, night time.Time) RateCell {
	var winner *model.RatePriceInterval
	for i := range intervals {
		iv := &intervals[i]
		if !iv.Covers(night) {
			continue
		}
		if winner == nil ||
			iv.Priority > winner.Priority ||
			(iv.Priority == winner.Priority && iv.ID < winner.ID) {
			winner = iv
		}
	}
	if winner == nil {
		return RateCell{}
	}
	if winner.Closed {
		return RateCell{Closed: true}
	}
	return RateCell{
		HasRate:       true,
		BaseRateCents: winner.BaseRateCents,
		MinLOS:        winner.MinLOS,
	}
}

// BulkRateUpdate is the administrative full-range replace operation over
// the ARI grid of one or more room types.
type BulkRateUpdate struct {
	PropertyID    uint64
	RoomTypeIDs   []uint64
	PlanID        uint64 // zero means the property's default BAR plan
	DateFrom      time.Time
	DateTo        time.Time // exclusive
	BaseRateCents int64
	MinLOS        int
	Closed        bool
}

// RateService owns the write side of the rate grid.
type RateService struct {
	Rates *repository.RateRepo
}

// BulkUpdate deletes every interval of each room type and plan that
// overlaps [DateFrom, DateTo) and inserts exactly one interval covering
// the full range with the supplied values. This is destructive,
// last-write-wins replace semantics: finer-grained pricing history inside
// the range is discarded, which is the documented policy, not an
// accident. The whole operation runs in one transaction so the
// no-overlap invariant of a room-type+plan grid is restored atomically.
func (s *RateService) BulkUpdate(ctx context.Context, in BulkRateUpdate) error {
	if !in.DateTo.After(in.DateFrom) {
		return fmt.Errorf("%w: date_to must be after date_from", ErrValidation)
	}
	if len(in.RoomTypeIDs) == 0 {
		return fmt.Errorf("%w: room_type_ids is required", ErrValidation)
	}
	if in.BaseRateCents < 0 || in.MinLOS < 0 {
		return fmt.Errorf("%w: negative rate or min_los", ErrValidation)
	}

	planID := in.PlanID
	if planID == 0 {
		plan, err := s.Rates.GetPlanByCode(ctx, in.PropertyID, model.DefaultPlanCode)
		if err == repository.ErrPlanNotFound {
			return fmt.Errorf("%w: rate plan", ErrNotFound)
		}
		if err != nil {
			return err
		}
		planID = plan.ID
	} else if _, err := s.Rates.GetPlanByID(ctx, in.PropertyID, planID); err != nil {
		if err == repository.ErrPlanNotFound {
			return fmt.Errorf("%w: rate plan", ErrNotFound)
		}
		return err
	}

	tx, err := s.Rates.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, rtID := range in.RoomTypeIDs {
		iv := model.RatePriceInterval{
			PropertyID:    in.PropertyID,
			RoomTypeID:    rtID,
			RatePlanID:    planID,
			StartDate:     in.DateFrom,
			EndDate:       in.DateTo,
			WeekdayMask:   model.AllWeekdays,
			BaseRateCents: in.BaseRateCents,
			MinLOS:        in.MinLOS,
			Closed:        in.Closed,
		}
		if err := s.Rates.ReplaceRangeTx(ctx, tx, iv); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
