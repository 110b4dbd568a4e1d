package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// RateHandler exposes the administrative bulk update over the ARI grid.
type RateHandler struct {
	Rates *service.RateService
}

// NewRateHandler constructs the handler; the rate service must be
// non-nil.
func NewRateHandler(rates *service.RateService) *RateHandler {
	if rates == nil {
		panic("nil rate service passed to NewRateHandler")
	}
	return &RateHandler{Rates: rates}
}

// BulkUpdate handles PUT /v1/rates/bulk. The operation has destructive
// replace semantics: every interval overlapping the range is deleted and
// one interval covering the full range is inserted. Finer-grained pricing
// inside the range does not survive.
func (h *RateHandler) BulkUpdate(c echo.Context) error {
	var body struct {
		PropertyID    uint64   `json:"property_id"`
		RoomTypeIDs   []uint64 `json:"room_type_ids"`
		PlanID        uint64   `json:"plan_id"`
		DateFrom      string   `json:"date_from"`
		DateTo        string   `json:"date_to"`
		BaseRateCents int64    `json:"base_rate_cents"`
		MinLOS        int      `json:"min_los"`
		Closed        bool     `json:"closed"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PropertyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id is required"})
	}
	from, err := parseDate(body.DateFrom)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_from, want YYYY-MM-DD"})
	}
	to, err := parseDate(body.DateTo)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_to, want YYYY-MM-DD"})
	}

	err = h.Rates.BulkUpdate(c.Request().Context(), service.BulkRateUpdate{
		PropertyID:    body.PropertyID,
		RoomTypeIDs:   body.RoomTypeIDs,
		PlanID:        body.PlanID,
		DateFrom:      from,
		DateTo:        to,
		BaseRateCents: body.BaseRateCents,
		MinLOS:        body.MinLOS,
		Closed:        body.Closed,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}
