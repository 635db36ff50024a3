package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/application/reports"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// ReportHandler serves the cross-cutting balance and movement views.
type ReportHandler struct {
	svc *reports.Service
}

// NewReportHandler builds the handler.
func NewReportHandler(svc *reports.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Balance godoc
// @Summary      Balance per (commodity, variety)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        commodity  query  string  false  "commodity filter"
// @Param        variety    query  string  false  "variety filter"
// @Param        as_of      query  string  false  "cutoff date (YYYY-MM-DD)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/reports/balance [get]
func (h *ReportHandler) Balance(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	var in dto.BalanceRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "malformed query"})
	}
	asOf, err := parseDate(in.AsOf)
	if err != nil {
		return fail(c, err)
	}

	// The variety filter rides on the commodity position path; a bare
	// variety with no commodity is meaningless and ignored.
	if in.Commodity != "" && in.Variety != "" {
		rows, _, err := h.svc.CommodityPosition(c.Context(), millID, in.Commodity, asOf)
		if err != nil {
			return fail(c, err)
		}
		filtered := rows[:0]
		for _, r := range rows {
			if r.Variety == in.Variety {
				filtered = append(filtered, r)
			}
		}
		return c.JSON(fiber.Map{"rows": filtered})
	}

	if in.Commodity != "" {
		rows, _, err := h.svc.CommodityPosition(c.Context(), millID, in.Commodity, asOf)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"rows": rows})
	}

	rows, err := h.svc.Position(c.Context(), millID, asOf)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"rows": rows})
}

// CommodityPosition godoc
// @Summary      Position and movement summary for one commodity
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        commodity  path   string  true   "commodity name"
// @Param        as_of      query  string  false  "cutoff date (YYYY-MM-DD)"
// @Success      200  {object}  dto.CommodityPositionResponse
// @Router       /api/reports/position/{commodity} [get]
func (h *ReportHandler) CommodityPosition(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	commodity := c.Params("commodity")
	asOf, err := parseDate(c.Query("as_of"))
	if err != nil {
		return fail(c, err)
	}
	rows, sum, err := h.svc.CommodityPosition(c.Context(), millID, commodity, asOf)
	if err != nil {
		return fail(c, err)
	}
	resp := dto.CommodityPositionResponse{Commodity: commodity, Rows: rows, Summary: *sum}
	if asOf != nil {
		resp.AsOf = asOf.Format(dto.DateLayout)
	}
	return c.JSON(resp)
}

// Summary godoc
// @Summary      Ledger movement summary over a window
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from       query  string  false  "date range start (YYYY-MM-DD)"
// @Param        to         query  string  false  "date range end (YYYY-MM-DD)"
// @Param        commodity  query  string  false  "commodity filter"
// @Param        variety    query  string  false  "variety filter"
// @Success      200  {object}  entity.LedgerSummary
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	var in dto.SummaryRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "malformed query"})
	}
	from, err := parseDate(in.From)
	if err != nil {
		return fail(c, err)
	}
	to, err := parseDate(in.To)
	if err != nil {
		return fail(c, err)
	}
	sum, err := h.svc.MovementSummary(c.Context(), millID, entity.EventFilter{
		Commodity: in.Commodity, Variety: in.Variety, From: from, To: to,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sum)
}

// Daily godoc
// @Summary      One day's movement restricted to named actions
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        date     query  string  true  "day (YYYY-MM-DD)"
// @Param        actions  query  string  true  "comma-joined action labels (OR)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	day, err := time.Parse(dto.DateLayout, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date must be YYYY-MM-DD"})
	}
	var actions []string
	for _, a := range strings.Split(c.Query("actions"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			actions = append(actions, a)
		}
	}
	rows, err := h.svc.DailyActionReport(c.Context(), millID, day, actions)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"date": day.Format(dto.DateLayout), "rows": rows})
}
