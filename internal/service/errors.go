// Package service implements the four engines of the booking system: the
// availability resolver, the rate-resolution (ARI) grid, the quote
// calculator and the booking lifecycle manager.
package service

import "errors"

// Error taxonomy surfaced to handlers. Handlers translate these with
// errors.Is: validation and not-found reject synchronously, an expired
// quote requires the caller to re-quote, and an availability conflict is
// a definitive failure that is never retried automatically — retrying
// cannot change the outcome for the same room-night.
var (
	// ErrValidation covers malformed dates, missing required fields and
	// non-positive occupancy.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers rooms that do not belong to the property and
	// bookings or plans that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrRoomUnavailable is the advisory availability failure: the room
	// is not currently free for the requested range.
	ErrRoomUnavailable = errors.New("room unavailable")

	// ErrAvailabilityConflict is the storage-level race loss: the
	// allocation insert hit the active (room, night) uniqueness
	// constraint. The booking involved has been rolled back or cancelled.
	ErrAvailabilityConflict = errors.New("availability conflict")
)
