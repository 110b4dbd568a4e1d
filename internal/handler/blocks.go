package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

// BlockHandler lets staff withdraw a room from sale for a date range
// without creating a reservation. Synced blocks are written by the
// external calendar ingestion through the same repository.
type BlockHandler struct {
	Blocks *repository.BlockRepo
}

func NewBlockHandler(blocks *repository.BlockRepo) *BlockHandler {
	if blocks == nil {
		panic("nil block repository passed to NewBlockHandler")
	}
	return &BlockHandler{Blocks: blocks}
}

// Create handles POST /v1/rooms/:id/blocks. The range is half-open: a
// block ending on D leaves night D sellable.
func (h *BlockHandler) Create(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Note      string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date, want YYYY-MM-DD"})
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date, want YYYY-MM-DD"})
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
	}

	id, err := h.Blocks.Create(c.Request().Context(), roomID, "manual", start, end, body.Note)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "room_id": roomID, "kind": "manual"})
}
