package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/domain"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
	"github.com/millbooks/millbooks-api/internal/domain/repository"
	"github.com/millbooks/millbooks-api/pkg/logger"
)

// docNumAttempts bounds the retry on a duplicate document number. The
// atomic sequence makes a collision abnormal; one retry absorbs a residual
// unique-index conflict.
const docNumAttempts = 2

// Service is the generic commodity record service: create/read/update/delete
// of one transaction kind's source records, document numbering, and the 1:1
// mirror of each record's stock effect into the ledger.
//
// Mirror failures never fail the primary operation: the source record's
// durability wins over the ledger copy, and the gap is logged for a later
// reconciliation pass.
type Service struct {
	cfg       KindConfig
	records   repository.RecordRepository
	mirror    Mirror
	numbers   NumberSource
	validator *Validator
	log       *logger.Logger
}

// NewService instantiates the service for one configured kind.
func NewService(cfg KindConfig, records repository.RecordRepository, mirror Mirror, numbers NumberSource, validator *Validator, log *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		records:   records,
		mirror:    mirror,
		numbers:   numbers,
		validator: validator,
		log:       log,
	}
}

// Config returns the kind configuration the service was built from.
func (s *Service) Config() KindConfig { return s.cfg }

// Create persists a new source record, assigns a document number when the
// kind is configured with a prefix, and records the stock effect in the
// ledger. The returned record carries the assigned document number.
func (s *Service) Create(ctx context.Context, millID string, req dto.CreateRecordRequest, actorID string) (*entity.SourceRecord, error) {
	if err := s.validator.ValidateCreate(s.cfg, req); err != nil {
		return nil, err
	}
	date, err := time.Parse(dto.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}

	now := time.Now()
	rec := &entity.SourceRecord{
		ID:            uuid.New().String(),
		MillID:        millID,
		RecordDate:    date,
		PartyName:     req.PartyName,
		BrokerName:    req.BrokerName,
		VehicleNumber: req.VehicleNumber,
		Commodity:     s.commodityFor(req.Commodity),
		Variety:       req.Variety,
		Quantity:      req.Quantity,
		BagCount:      req.BagCount,
		Rate:          req.Rate,
		Notes:         req.Notes,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.persistNew(ctx, rec); err != nil {
		return nil, err
	}

	// Mirror after the record is durable. A failed mirror is logged and
	// swallowed; it never rolls the source record back.
	ev := s.eventFor(rec)
	if err := s.mirror.Record(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("mill_id", millID).
			Str("source_kind", s.cfg.Kind).
			Str("source_id", rec.ID).
			Msg("ledger mirror failed on create")
	}
	return rec, nil
}

// persistNew assigns the document number (when configured) and inserts the
// record, retrying once if the number hits the residual unique index.
func (s *Service) persistNew(ctx context.Context, rec *entity.SourceRecord) error {
	attempts := 1
	if s.cfg.Prefix != "" {
		attempts = docNumAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if s.cfg.Prefix != "" {
			rec.DocNumber, err = s.numbers.Assign(ctx, rec.MillID, s.cfg.Kind, s.cfg.Prefix, rec.RecordDate)
			if err != nil {
				return err
			}
		}
		err = s.records.Create(ctx, rec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("create %s record: %w", s.cfg.Kind, err)
		}
		s.log.Warn().
			Str("mill_id", rec.MillID).
			Str("source_kind", s.cfg.Kind).
			Str("doc_number", rec.DocNumber).
			Msg("duplicate document number, retrying with a fresh serial")
	}
	return fmt.Errorf("create %s record: %w", s.cfg.Kind, err)
}

// GetByID returns the record, or domain.ErrNotFound when it is absent or
// belongs to another mill.
func (s *Service) GetByID(ctx context.Context, millID, id string) (*entity.SourceRecord, error) {
	rec, err := s.records.GetByID(ctx, millID, id)
	if err != nil {
		return nil, fmt.Errorf("get %s record: %w", s.cfg.Kind, err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// List pages through the kind's source records. Purely source-record storage;
// the ledger is not consulted.
func (s *Service) List(ctx context.Context, millID string, f entity.RecordFilter, limit, offset int) ([]*entity.SourceRecord, int, error) {
	recs, total, err := s.records.List(ctx, millID, f, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s records: %w", s.cfg.Kind, err)
	}
	return recs, total, nil
}

// Update applies a partial update to the record and re-syncs the mirrored
// event when the patch touches date, quantity, bag count, variety or party.
// The document number is immutable across updates.
func (s *Service) Update(ctx context.Context, millID, id string, req dto.UpdateRecordRequest, actorID string) (*entity.SourceRecord, error) {
	if err := s.validator.ValidateUpdate(s.cfg, req); err != nil {
		return nil, err
	}
	rec, err := s.GetByID(ctx, millID, id)
	if err != nil {
		return nil, err
	}

	patch, touchesLedger := applyUpdate(rec, req)
	rec.UpdatedAt = time.Now()
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update %s record: %w", s.cfg.Kind, err)
	}

	if touchesLedger {
		if err := s.mirror.UpdateByRef(ctx, s.cfg.Kind, rec.ID, patch); err != nil {
			// A missing mirror is a known sync gap, anything else a mirror
			// write failure. Both are non-fatal for the source record.
			s.log.Error().Err(err).
				Str("mill_id", millID).
				Str("source_kind", s.cfg.Kind).
				Str("source_id", rec.ID).
				Msg("ledger mirror re-sync failed on update")
		}
	}
	return rec, nil
}

// applyUpdate merges the request into the record and builds the ledger patch.
// Reports whether any ledger-relevant field changed.
func applyUpdate(rec *entity.SourceRecord, req dto.UpdateRecordRequest) (entity.StockEventPatch, bool) {
	var patch entity.StockEventPatch
	touches := false

	if req.Date != nil {
		date, _ := time.Parse(dto.DateLayout, *req.Date) // validated upstream
		rec.RecordDate = date
		patch.EventDate = &date
		touches = true
	}
	if req.Quantity != nil {
		rec.Quantity = *req.Quantity
		patch.Quantity = req.Quantity
		touches = true
	}
	if req.BagCount != nil {
		rec.BagCount = *req.BagCount
		patch.BagCount = req.BagCount
		touches = true
	}
	if req.Variety != nil {
		rec.Variety = *req.Variety
		patch.Variety = req.Variety
		touches = true
	}
	if req.PartyName != nil {
		rec.PartyName = *req.PartyName
		patch.Note = req.PartyName
		touches = true
	}
	if req.BrokerName != nil {
		rec.BrokerName = *req.BrokerName
	}
	if req.VehicleNumber != nil {
		rec.VehicleNumber = *req.VehicleNumber
	}
	if req.Rate != nil {
		rec.Rate = *req.Rate
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}
	return patch, touches
}

// Delete hard-deletes the record and cascades the ledger mirror. Fails with
// domain.ErrNotFound when the record is missing or belongs to another mill.
func (s *Service) Delete(ctx context.Context, millID, id string) error {
	deleted, err := s.records.Delete(ctx, millID, id)
	if err != nil {
		return fmt.Errorf("delete %s record: %w", s.cfg.Kind, err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	if err := s.mirror.DeleteByRef(ctx, s.cfg.Kind, id); err != nil {
		s.log.Error().Err(err).
			Str("mill_id", millID).
			Str("source_kind", s.cfg.Kind).
			Str("source_id", id).
			Msg("ledger mirror cascade failed on delete")
	}
	return nil
}

// BulkDelete deletes the matching records, silently skipping unmatched ids,
// and cascades one ledger delete per deleted record. Returns how many records
// were deleted. Each id succeeds or fails on its own; there is no rollback.
func (s *Service) BulkDelete(ctx context.Context, millID string, ids []string) (int, error) {
	deleted, err := s.records.DeleteMany(ctx, millID, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete %s records: %w", s.cfg.Kind, err)
	}
	for _, id := range deleted {
		if err := s.mirror.DeleteByRef(ctx, s.cfg.Kind, id); err != nil {
			s.log.Error().Err(err).
				Str("mill_id", millID).
				Str("source_kind", s.cfg.Kind).
				Str("source_id", id).
				Msg("ledger mirror cascade failed on bulk delete")
		}
	}
	return len(deleted), nil
}

// Summary aggregates the kind's source records over a date range, computed
// directly over record storage (complementary to the ledger summary).
func (s *Service) Summary(ctx context.Context, millID string, from, to *time.Time) (*entity.RecordSummary, error) {
	sum, err := s.records.Summary(ctx, millID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize %s records: %w", s.cfg.Kind, err)
	}
	if sum == nil {
		sum = &entity.RecordSummary{}
	}
	return sum, nil
}

func (s *Service) commodityFor(payloadCommodity string) string {
	if s.cfg.CommodityFromPayload() {
		return payloadCommodity
	}
	return s.cfg.Commodity
}

// eventFor derives the stock event mirroring a record, per the kind's field
// mapping: total quantity and bag count, fixed direction and action, party as
// the note text.
func (s *Service) eventFor(rec *entity.SourceRecord) *entity.StockEvent {
	return &entity.StockEvent{
		MillID:     rec.MillID,
		EventDate:  rec.RecordDate,
		Commodity:  rec.Commodity,
		Variety:    rec.Variety,
		Direction:  s.cfg.Direction,
		Action:     s.cfg.Action,
		Quantity:   rec.Quantity,
		BagCount:   rec.BagCount,
		SourceKind: s.cfg.Kind,
		SourceID:   rec.ID,
		Note:       rec.PartyName,
		RecordedBy: rec.CreatedBy,
	}
}
