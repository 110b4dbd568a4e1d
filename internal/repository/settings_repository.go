package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// SettingsRepo reads the per-property pricing configuration consumed by
// the quote engine: commercial settings, child age rules and tax rules.
// All of it is read-only from this service's point of view.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Commercial returns the property's commercial settings. A property
// without a row falls back to zero extras and tax-exclusive prices.
func (r *SettingsRepo) Commercial(ctx context.Context, propertyID uint64) (*model.CommercialSettings, error) {
	const q = `SELECT property_id, extra_adult_fee_cents, prices_include_taxes
	           FROM commercial_settings WHERE property_id = ?`
	var s model.CommercialSettings
	err := r.db.QueryRowContext(ctx, q, propertyID).Scan(
		&s.PropertyID, &s.ExtraAdultFeeCents, &s.PricesIncludeTaxes)
	if err == sql.ErrNoRows {
		return &model.CommercialSettings{PropertyID: propertyID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ChildRules returns the property's child pricing rules in stored order.
// Order matters: a child matches the first rule whose age range contains
// the age, and only that rule.
func (r *SettingsRepo) ChildRules(ctx context.Context, propertyID uint64) ([]model.ChildPricingRule, error) {
	const q = `SELECT id, property_id, min_age, max_age, fee_cents, sort_order
	           FROM child_pricing_rules WHERE property_id = ? ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ChildPricingRule, 0)
	for rows.Next() {
		var c model.ChildPricingRule
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.MinAge, &c.MaxAge, &c.FeeCents, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TaxRules returns the property's active percentage tax rules.
func (r *SettingsRepo) TaxRules(ctx context.Context, propertyID uint64) ([]model.TaxRule, error) {
	const q = `SELECT id, property_id, name, percent, active
	           FROM tax_rules WHERE property_id = ? AND active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TaxRule, 0)
	for rows.Next() {
		var t model.TaxRule
		if err := rows.Scan(&t.ID, &t.PropertyID, &t.Name, &t.Percent, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
