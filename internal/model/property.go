package model

import "time"

// Property is the top-level tenant unit. Every room, rate plan and
// commercial setting belongs to exactly one property.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the property.
//  Currency  – ISO 4217 code used for every amount under this property.
//  CreatedAt – creation timestamp.
type Property struct {
	ID        uint64    // properties.id
	Name      string    // properties.name
	Currency  string    // properties.currency
	CreatedAt time.Time // properties.created_at
}

// RatePlan is a named pricing plan scoped to a property. Rate intervals
// always belong to a plan; when a caller does not name one, the default
// BAR (Best Available Rate) plan applies.
type RatePlan struct {
	ID         uint64 // rate_plans.id
	PropertyID uint64 // rate_plans.property_id
	Code       string // rate_plans.code, e.g. "BAR"
	Name       string // rate_plans.name
}

// DefaultPlanCode is the plan resolved when a request carries no plan.
const DefaultPlanCode = "BAR"
