package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RateRepo provides access to rate plans and the rate_price_intervals
// grid. Reads feed the pure rate-resolution engine; the one write path is
// the bulk replace used by admin tooling.
type RateRepo struct {
	db *sql.DB
}

// NewRateRepo returns a new RateRepo bound to the given database.
func NewRateRepo(db *sql.DB) *RateRepo { return &RateRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *RateRepo) DB() *sql.DB { return r.db }

// GetPlanByCode resolves a rate plan by property and code. It returns
// ErrPlanNotFound when the plan does not exist.
func (r *RateRepo) GetPlanByCode(ctx context.Context, propertyID uint64, code string) (*model.RatePlan, error) {
	const q = `SELECT id, property_id, code, name FROM rate_plans WHERE property_id = ? AND code = ?`
	var p model.RatePlan
	err := r.db.QueryRowContext(ctx, q, propertyID, code).Scan(&p.ID, &p.PropertyID, &p.Code, &p.Name)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlanByID resolves a rate plan by primary key, scoped to a property.
func (r *RateRepo) GetPlanByID(ctx context.Context, propertyID, planID uint64) (*model.RatePlan, error) {
	const q = `SELECT id, property_id, code, name FROM rate_plans WHERE id = ? AND property_id = ?`
	var p model.RatePlan
	err := r.db.QueryRowContext(ctx, q, planID, propertyID).Scan(&p.ID, &p.PropertyID, &p.Code, &p.Name)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// IntervalsForRange returns every interval of a room type and plan that
// overlaps the half-open [from, to) range, ordered by id so that
// resolution tie-breaking is stable. Weekday filtering happens in the
// resolution engine, not here.
func (r *RateRepo) IntervalsForRange(ctx context.Context, roomTypeID, planID uint64, from, to time.Time) ([]model.RatePriceInterval, error) {
	const q = `SELECT id, property_id, room_type_id, rate_plan_id, start_date, end_date,
	                  weekday_mask, base_rate_cents, min_los, closed, priority
	           FROM rate_price_intervals
	           WHERE room_type_id = ? AND rate_plan_id = ? AND start_date < ? AND end_date > ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, roomTypeID, planID, to.Format(dateLayout), from.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RatePriceInterval, 0)
	for rows.Next() {
		var iv model.RatePriceInterval
		if err := rows.Scan(&iv.ID, &iv.PropertyID, &iv.RoomTypeID, &iv.RatePlanID,
			&iv.StartDate, &iv.EndDate, &iv.WeekdayMask, &iv.BaseRateCents,
			&iv.MinLOS, &iv.Closed, &iv.Priority); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// ReplaceRangeTx implements the bulk-update policy for one room type and
// plan: delete every interval overlapping [from, to), then insert exactly
// one interval covering the full range with the supplied values. This is
// last-write-wins over the whole range — finer-grained history inside the
// range is intentionally discarded. The caller owns the transaction.
func (r *RateRepo) ReplaceRangeTx(ctx context.Context, tx *sql.Tx, iv model.RatePriceInterval) error {
	const del = `DELETE FROM rate_price_intervals
	             WHERE room_type_id = ? AND rate_plan_id = ? AND start_date < ? AND end_date > ?`
	if _, err := tx.ExecContext(ctx, del, iv.RoomTypeID, iv.RatePlanID,
		iv.EndDate.Format(dateLayout), iv.StartDate.Format(dateLayout)); err != nil {
		return err
	}
	const ins = `INSERT INTO rate_price_intervals
	             (property_id, room_type_id, rate_plan_id, start_date, end_date,
	              weekday_mask, base_rate_cents, min_los, closed, priority)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, ins, iv.PropertyID, iv.RoomTypeID, iv.RatePlanID,
		iv.StartDate.Format(dateLayout), iv.EndDate.Format(dateLayout),
		iv.WeekdayMask, iv.BaseRateCents, iv.MinLOS, iv.Closed, iv.Priority)
	return err
}
