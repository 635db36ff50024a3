package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/domain"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// fail maps a domain error to its HTTP status and body.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "duplicate resource"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "internal error"})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
}

// parseDate parses an optional YYYY-MM-DD query value; empty returns nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, domain.ErrValidation
	}
	return &t, nil
}

// parseSort maps "date", "-date", "created", "-created" onto column + order.
func parseSort(s string) (sortBy string, desc bool) {
	desc = strings.HasPrefix(s, "-")
	switch strings.TrimPrefix(s, "-") {
	case "created":
		return "created_at", desc
	default:
		return "", desc // repository default: the business date
	}
}

func recordResponse(rec *entity.SourceRecord) dto.RecordResponse {
	return dto.RecordResponse{
		ID:            rec.ID,
		Date:          rec.RecordDate.Format(dto.DateLayout),
		PartyName:     rec.PartyName,
		BrokerName:    rec.BrokerName,
		VehicleNumber: rec.VehicleNumber,
		Commodity:     rec.Commodity,
		Variety:       rec.Variety,
		Quantity:      rec.Quantity,
		BagCount:      rec.BagCount,
		Rate:          rec.Rate,
		Notes:         rec.Notes,
		DocNumber:     rec.DocNumber,
		CreatedBy:     rec.CreatedBy,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

func recordResponses(recs []*entity.SourceRecord) []dto.RecordResponse {
	out := make([]dto.RecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordResponse(rec))
	}
	return out
}

func eventResponse(ev *entity.StockEvent) dto.StockEventResponse {
	return dto.StockEventResponse{
		ID:         ev.ID,
		EventDate:  ev.EventDate.Format(dto.DateLayout),
		Commodity:  ev.Commodity,
		Variety:    ev.Variety,
		Direction:  ev.Direction,
		Action:     ev.Action,
		Quantity:   ev.Quantity,
		BagCount:   ev.BagCount,
		SourceKind: ev.SourceKind,
		SourceID:   ev.SourceID,
		Note:       ev.Note,
		RecordedBy: ev.RecordedBy,
		CreatedAt:  ev.CreatedAt.Format(time.RFC3339),
	}
}
