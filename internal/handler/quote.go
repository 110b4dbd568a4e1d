package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

// QuoteHandler exposes quote preview over HTTP. Computed quotes are
// stored under an opaque token with a 30 minute TTL; they hold no
// inventory and are re-validated when converted into a booking.
type QuoteHandler struct {
	Quotes *service.QuoteEngine
	Store  *repository.QuoteStore
}

// NewQuoteHandler constructs the handler. The store may be backed by a
// nil Redis client, in which case quotes are computed but not retrievable
// by token.
func NewQuoteHandler(quotes *service.QuoteEngine, store *repository.QuoteStore) *QuoteHandler {
	if quotes == nil || store == nil {
		panic("nil dependency passed to NewQuoteHandler")
	}
	return &QuoteHandler{Quotes: quotes, Store: store}
}

// Create handles POST /v1/properties/:id/quotes. The body names a room,
// a half-open stay range and the occupancy; the response carries the
// night-by-night breakdown, totals and (when the store is enabled) the
// retrieval token.
func (h *QuoteHandler) Create(c echo.Context) error {
	propertyID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var body struct {
		RoomID       uint64 `json:"room_id"`
		CheckIn      string `json:"check_in"`
		CheckOut     string `json:"check_out"`
		Adults       int    `json:"adults"`
		ChildrenAges []int  `json:"children_ages"`
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

	quote, err := h.Quotes.BuildQuote(c.Request().Context(), service.QuoteInput{
		PropertyID:   propertyID,
		RoomID:       body.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Adults:       body.Adults,
		ChildrenAges: body.ChildrenAges,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	if h.Store.Enabled() {
		if _, err := h.Store.Save(c.Request().Context(), quote); err != nil {
			// A quote that cannot be stored is still a valid preview.
			c.Logger().Warnf("quote store save failed: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, quote)
}

// Get handles GET /v1/quotes/:token. An unknown or elapsed token yields
// 410 Gone; the caller must re-quote, never re-use stale prices.
func (h *QuoteHandler) Get(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote token"})
	}
	quote, err := h.Store.Get(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}
