package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD value into a UTC midnight time.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// bookingView is the JSON shape returned for a booking.
func bookingView(b *model.Booking) echo.Map {
	view := echo.Map{
		"id":             b.ID,
		"property_id":    b.PropertyID,
		"room_id":        b.RoomID,
		"status":         b.Status,
		"check_in":       b.CheckIn.Format(dateLayout),
		"check_out":      b.CheckOut.Format(dateLayout),
		"guest_name":     b.GuestName,
		"guest_contact":  b.GuestContact,
		"adults":         b.Adults,
		"children_count": b.ChildrenCount,
		"subtotal_cents": b.SubtotalCents,
		"taxes_cents":    b.TaxesCents,
		"total_cents":    b.TotalCents,
		"currency":       b.Currency,
	}
	if b.PaymentRef != nil {
		view["payment_ref"] = *b.PaymentRef
	}
	return view
}

// writeServiceError translates the service error taxonomy into HTTP
// responses. Unknown errors become opaque 500s so internals never leak.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrQuoteExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "quote expired; request a new quote"})
	case errors.Is(err, service.ErrRoomUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAvailabilityConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "conflict": true})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
