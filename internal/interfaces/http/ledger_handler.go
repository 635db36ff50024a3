package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/application/ledger"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// LedgerHandler serves the raw ledger listing.
type LedgerHandler struct {
	store *ledger.Store
}

// NewLedgerHandler builds the handler.
func NewLedgerHandler(store *ledger.Store) *LedgerHandler {
	return &LedgerHandler{store: store}
}

// List godoc
// @Summary      List raw ledger events
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        limit      query  int     false  "page size"
// @Param        offset     query  int     false  "page offset"
// @Param        commodity  query  string  false  "commodity filter"
// @Param        variety    query  string  false  "variety filter"
// @Param        from       query  string  false  "date range start (YYYY-MM-DD)"
// @Param        to         query  string  false  "date range end (YYYY-MM-DD)"
// @Param        q          query  string  false  "free-text search over commodity and note"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	var in dto.ListEventsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "malformed query"})
	}
	in.DefaultPage()

	from, err := parseDate(in.From)
	if err != nil {
		return fail(c, err)
	}
	to, err := parseDate(in.To)
	if err != nil {
		return fail(c, err)
	}
	sortBy, desc := parseSort(in.Sort)
	f := entity.EventFilter{
		Commodity: in.Commodity,
		Variety:   in.Variety,
		From:      from,
		To:        to,
		Search:    in.Search,
		SortBy:    sortBy,
		SortDesc:  desc,
	}

	events, total, err := h.store.List(c.Context(), millID, f, in.Limit, in.Offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.StockEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse(ev))
	}
	return c.JSON(fiber.Map{
		"events": out,
		"page":   dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	})
}
