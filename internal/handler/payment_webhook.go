package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// PaymentWebhookHandler receives payment success callbacks from the
// payment provider over HTTP. The same finalize path also runs for
// messages on the payment queue; both must stay idempotent because
// providers retry aggressively.
type PaymentWebhookHandler struct {
	Bookings *service.BookingService
}

func NewPaymentWebhookHandler(bookings *service.BookingService) *PaymentWebhookHandler {
	if bookings == nil {
		panic("nil booking service passed to NewPaymentWebhookHandler")
	}
	return &PaymentWebhookHandler{Bookings: bookings}
}

// Receive handles POST /v1/payments/webhook.
//
// An availability conflict during finalize still returns 200: the
// provider's retry loop must stop, the money is real, and the booking is
// left CANCELLED for out-of-band reconciliation. Everything except
// transient infrastructure failures is acknowledged.
func (h *PaymentWebhookHandler) Receive(c echo.Context) error {
	var body struct {
		BookingID  uint64 `json:"booking_id"`
		PaymentRef string `json:"payment_ref"`
	}
	if err := c.Bind(&body); err != nil || body.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook payload"})
	}

	res, err := h.Bookings.Finalize(c.Request().Context(), body.BookingID, body.PaymentRef)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{
			"acknowledged":      true,
			"confirmed":         res.Confirmed,
			"already_confirmed": res.AlreadyConfirmed,
		})
	case errors.Is(err, service.ErrAvailabilityConflict):
		log.Printf("payment-webhook: booking %d lost its rooms, cancelled for reconciliation", body.BookingID)
		return c.JSON(http.StatusOK, echo.Map{
			"acknowledged": true,
			"confirmed":    false,
			"cancelled":    true,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finalize booking"})
	}
}
