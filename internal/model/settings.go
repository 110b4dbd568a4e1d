package model

// CommercialSettings is per-property pricing configuration read by the
// quote engine. Exactly one row exists per property.
//
// Fields:
//  PropertyID         – owning property.
//  ExtraAdultFeeCents – nightly fee per adult above the base occupancy.
//  PricesIncludeTaxes – when true, taxes are extracted from the rate
//                       instead of added on top.
type CommercialSettings struct {
	PropertyID         uint64 // commercial_settings.property_id
	ExtraAdultFeeCents int64  // commercial_settings.extra_adult_fee_cents
	PricesIncludeTaxes bool   // commercial_settings.prices_include_taxes
}

// ChildPricingRule adds a fixed nightly fee for a child whose age falls
// inside [MinAge, MaxAge]. Rules are evaluated in stored order and a
// child matches at most one rule: the first whose range contains the age.
type ChildPricingRule struct {
	ID         uint64 // child_pricing_rules.id
	PropertyID uint64 // child_pricing_rules.property_id
	MinAge     int    // child_pricing_rules.min_age (inclusive)
	MaxAge     int    // child_pricing_rules.max_age (inclusive)
	FeeCents   int64  // child_pricing_rules.fee_cents
	SortOrder  int    // child_pricing_rules.sort_order
}

// TaxRule is a percentage tax applied to the raw nightly subtotal. All
// active rules are summed into a single effective rate.
type TaxRule struct {
	ID         uint64  // tax_rules.id
	PropertyID uint64  // tax_rules.property_id
	Name       string  // tax_rules.name
	Percent    float64 // tax_rules.percent, e.g. 7.5
	Active     bool    // tax_rules.active
}
