package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP: creation,
// cancellation, relocation and payment finalization.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs the handler; the lifecycle service must
// be non-nil.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// Create handles POST /v1/properties/:id/bookings. On an availability
// conflict no booking row persists and 409 is returned; retrying cannot
// succeed for the same room-nights, so callers should re-quote instead.
func (h *BookingHandler) Create(c echo.Context) error {
	propertyID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var body struct {
		RoomID         uint64 `json:"room_id"`
		CheckIn        string `json:"check_in"`
		CheckOut       string `json:"check_out"`
		GuestName      string `json:"guest_name"`
		GuestContact   string `json:"guest_contact"`
		Adults         int    `json:"adults"`
		ChildrenAges   []int  `json:"children_ages"`
		RequirePayment bool   `json:"require_payment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	checkIn, err := parseDate(body.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in, want YYYY-MM-DD"})
	}
	checkOut, err := parseDate(body.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out, want YYYY-MM-DD"})
	}

	booking, err := h.Bookings.Create(c.Request().Context(), service.CreateInput{
		PropertyID:     propertyID,
		RoomID:         body.RoomID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		GuestName:      body.GuestName,
		GuestContact:   body.GuestContact,
		Adults:         body.Adults,
		ChildrenAges:   body.ChildrenAges,
		RequirePayment: body.RequirePayment,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, bookingView(booking))
}

// Get handles GET /v1/bookings/:id and returns the booking with its
// night rows, released ones included.
func (h *BookingHandler) Get(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, nights, err := h.Bookings.Get(c.Request().Context(), bookingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	view := bookingView(booking)
	nightViews := make([]echo.Map, 0, len(nights))
	for _, n := range nights {
		nightViews = append(nightViews, echo.Map{
			"night":           n.Night.Format(dateLayout),
			"room_id":         n.RoomID,
			"is_active":       n.Active,
			"base_rate_cents": n.BaseRateCents,
			"extras_cents":    n.ExtrasCents,
			"taxes_cents":     n.TaxesCents,
			"total_cents":     n.TotalCents,
		})
	}
	view["nights"] = nightViews
	return c.JSON(http.StatusOK, view)
}

// Cancel handles POST /v1/bookings/:id/cancel. Cancellation is
// idempotent: cancelling twice succeeds both times.
func (h *BookingHandler) Cancel(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Bookings.Cancel(c.Request().Context(), bookingID); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
}

// Move handles POST /v1/bookings/:id/move, relocating a booking to a new
// room and/or date range.
func (h *BookingHandler) Move(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		RoomID   uint64 `json:"room_id"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	checkIn, err := parseDate(body.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in, want YYYY-MM-DD"})
	}
	checkOut, err := parseDate(body.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out, want YYYY-MM-DD"})
	}

	booking, err := h.Bookings.Move(c.Request().Context(), bookingID, body.RoomID, checkIn, checkOut)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookingView(booking))
}

// Finalize handles POST /v1/bookings/:id/finalize for the synchronous
// pay-at-property confirmation path.
func (h *BookingHandler) Finalize(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		PaymentRef string `json:"payment_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Bookings.Finalize(c.Request().Context(), bookingID, body.PaymentRef)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
