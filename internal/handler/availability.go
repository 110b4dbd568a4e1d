package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// AvailabilityHandler exposes the availability resolver over HTTP.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs the handler; the resolver must be
// non-nil.
func NewAvailabilityHandler(avail *service.AvailabilityService) *AvailabilityHandler {
	if avail == nil {
		panic("nil availability service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: avail}
}

// Query handles GET /v1/properties/:id/availability?from=&to=&safe_mode=.
// safe_mode is an explicit per-request parameter, never ambient state:
// internal staff tooling and the active public sale legitimately need
// different values at the same time.
func (h *AvailabilityHandler) Query(c echo.Context) error {
	propertyID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid 'from' date, want YYYY-MM-DD"})
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid 'to' date, want YYYY-MM-DD"})
	}
	safeMode := c.QueryParam("safe_mode") == "true" || c.QueryParam("safe_mode") == "1"

	res, err := h.Availability.Resolve(c.Request().Context(), service.AvailabilityInput{
		PropertyID: propertyID,
		From:       from,
		To:         to,
		SafeMode:   safeMode,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
