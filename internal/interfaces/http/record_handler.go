package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/application/records"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// RecordService is the slice of records.Service the handler uses.
type RecordService interface {
	Config() records.KindConfig
	Create(ctx context.Context, millID string, req dto.CreateRecordRequest, actorID string) (*entity.SourceRecord, error)
	GetByID(ctx context.Context, millID, id string) (*entity.SourceRecord, error)
	List(ctx context.Context, millID string, f entity.RecordFilter, limit, offset int) ([]*entity.SourceRecord, int, error)
	Update(ctx context.Context, millID, id string, req dto.UpdateRecordRequest, actorID string) (*entity.SourceRecord, error)
	Delete(ctx context.Context, millID, id string) error
	BulkDelete(ctx context.Context, millID string, ids []string) (int, error)
	Summary(ctx context.Context, millID string, from, to *time.Time) (*entity.RecordSummary, error)
}

// RecordHandler serves the uniform tenant-scoped surface of one transaction
// kind. One instance is mounted per configured kind.
type RecordHandler struct {
	svc RecordService
}

// NewRecordHandler builds the handler.
func NewRecordHandler(svc RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Create godoc
// @Summary      Create a transaction record
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateRecordRequest  true  "record payload"
// @Success      201   {object}  dto.RecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/{kind} [post]
func (h *RecordHandler) Create(c *fiber.Ctx) error {
	millID, actorID := GetMillID(c), GetActorID(c)
	if millID == "" || actorID == "" {
		return unauthorized(c)
	}
	var in dto.CreateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed body"})
	}
	rec, err := h.svc.Create(c.Context(), millID, in, actorID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recordResponse(rec))
}

// GetByID godoc
// @Summary      Get a transaction record
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "record id"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [get]
func (h *RecordHandler) GetByID(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	rec, err := h.svc.GetByID(c.Context(), millID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(recordResponse(rec))
}

// List godoc
// @Summary      List transaction records
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int     false  "page size"
// @Param        offset  query  int     false  "page offset"
// @Param        from    query  string  false  "date range start (YYYY-MM-DD)"
// @Param        to      query  string  false  "date range end (YYYY-MM-DD)"
// @Param        q       query  string  false  "free-text search"
// @Param        sort    query  string  false  "date | -date | created | -created"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/{kind} [get]
func (h *RecordHandler) List(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	var in dto.ListRecordsRequest
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
	f := entity.RecordFilter{From: from, To: to, Search: in.Search, SortBy: sortBy, SortDesc: desc}

	recs, total, err := h.svc.List(c.Context(), millID, f, in.Limit, in.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"records": recordResponses(recs),
		"page":    dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	})
}

// Update godoc
// @Summary      Update a transaction record
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "record id"
// @Param        body  body      dto.UpdateRecordRequest  true  "partial update"
// @Success      200   {object}  dto.RecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [put]
func (h *RecordHandler) Update(c *fiber.Ctx) error {
	millID, actorID := GetMillID(c), GetActorID(c)
	if millID == "" || actorID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed body"})
	}
	rec, err := h.svc.Update(c.Context(), millID, c.Params("id"), in, actorID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(recordResponse(rec))
}

// Delete godoc
// @Summary      Delete a transaction record
// @Tags         records
// @Security     Bearer
// @Param        id  path  string  true  "record id"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [delete]
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	if err := h.svc.Delete(c.Context(), millID, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BulkDelete godoc
// @Summary      Delete several records by id
// @Description  Unmatched ids are skipped silently; each deletion cascades
// @Description  its ledger mirror independently.
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BulkDeleteRequest  true  "ids"
// @Success      200   {object}  map[string]int
// @Router       /api/{kind}/bulk-delete [post]
func (h *RecordHandler) BulkDelete(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	var in dto.BulkDeleteRequest
	if err := c.BodyParser(&in); err != nil || len(in.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "ids required"})
	}
	deleted, err := h.svc.BulkDelete(c.Context(), millID, in.IDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// Summary godoc
// @Summary      Aggregate the kind's records over a date range
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "date range start (YYYY-MM-DD)"
// @Param        to    query  string  false  "date range end (YYYY-MM-DD)"
// @Success      200  {object}  entity.RecordSummary
// @Router       /api/{kind}/summary [get]
func (h *RecordHandler) Summary(c *fiber.Ctx) error {
	millID := GetMillID(c)
	if millID == "" {
		return unauthorized(c)
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return fail(c, err)
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return fail(c, err)
	}
	sum, err := h.svc.Summary(c.Context(), millID, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sum)
}
