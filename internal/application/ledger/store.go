// Package ledger is the append-only stock ledger: every business transaction
// mirrors into exactly one stock event here, and all balance/summary views are
// derived from those events.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/millbooks/millbooks-api/internal/domain"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
	"github.com/millbooks/millbooks-api/internal/domain/repository"
	"github.com/millbooks/millbooks-api/pkg/logger"
)

// Store owns ledger state. Side effects stay inside the ledger; the store
// never touches source-record storage.
type Store struct {
	events repository.StockEventRepository
	log    *logger.Logger
}

// NewStore builds the ledger store.
func NewStore(events repository.StockEventRepository, log *logger.Logger) *Store {
	return &Store{events: events, log: log}
}

// Record persists a new stock event. It fails with domain.ErrValidation on a
// negative quantity, negative bag count, missing commodity or bad direction,
// and with domain.ErrDuplicate when the (sourceKind, sourceId) mirror already
// exists.
func (s *Store) Record(ctx context.Context, ev *entity.StockEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return fmt.Errorf("record stock event: %w", err)
	}
	return nil
}

// UpdateByRef locates the event mirroring (sourceKind, sourceID) and merges
// the patch into it. A missing mirror returns domain.ErrNotFound; callers
// treat that as a non-fatal sync miss, and no new event is created.
func (s *Store) UpdateByRef(ctx context.Context, sourceKind, sourceID string, patch entity.StockEventPatch) error {
	ev, err := s.events.GetByRef(ctx, sourceKind, sourceID)
	if err != nil {
		return fmt.Errorf("lookup mirror %s/%s: %w", sourceKind, sourceID, err)
	}
	if ev == nil {
		return domain.ErrNotFound
	}
	patch.Apply(ev)
	if err := validateEvent(ev); err != nil {
		return err
	}
	if err := s.events.Update(ctx, ev); err != nil {
		return fmt.Errorf("update mirror %s/%s: %w", sourceKind, sourceID, err)
	}
	return nil
}

// DeleteByRef deletes the 0-or-1 events mirroring the ref. Idempotent:
// repeated calls after the first are no-ops.
func (s *Store) DeleteByRef(ctx context.Context, sourceKind, sourceID string) error {
	if _, err := s.events.DeleteByRef(ctx, sourceKind, sourceID); err != nil {
		return fmt.Errorf("delete mirror %s/%s: %w", sourceKind, sourceID, err)
	}
	return nil
}

// Ref identifies a mirrored event by its source record.
type Ref struct {
	SourceKind string
	SourceID   string
}

// BulkDeleteByRefs deletes each ref independently and sequentially; this is
// not an atomic batch. A failure on one ref is logged and does not block the
// others.
func (s *Store) BulkDeleteByRefs(ctx context.Context, refs []Ref) {
	for _, ref := range refs {
		if err := s.DeleteByRef(ctx, ref.SourceKind, ref.SourceID); err != nil {
			s.log.Error().Err(err).
				Str("source_kind", ref.SourceKind).
				Str("source_id", ref.SourceID).
				Msg("ledger bulk delete: ref failed")
		}
	}
}

// Balance groups matching events by (commodity, variety) and returns
// credit − debit per group plus total bags, sorted by commodity then variety.
// Commodity, variety and as-of cutoff are optional filters.
func (s *Store) Balance(ctx context.Context, millID string, commodity, variety string, asOf *time.Time) ([]entity.BalanceRow, error) {
	f := entity.EventFilter{Commodity: commodity, Variety: variety, To: asOf}
	rows, err := s.events.Balance(ctx, millID, f)
	if err != nil {
		return nil, fmt.Errorf("ledger balance: %w", err)
	}
	if rows == nil {
		rows = []entity.BalanceRow{}
	}
	return rows, nil
}

// Summary aggregates movement over a window. A window with no events yields
// the zero-valued summary, never nil.
func (s *Store) Summary(ctx context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error) {
	sum, err := s.events.Summary(ctx, millID, f)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	if sum == nil {
		sum = &entity.LedgerSummary{}
	}
	return sum, nil
}

// ByAction restricts aggregation to one or more named actions (logical OR),
// grouped by (commodity, variety).
func (s *Store) ByAction(ctx context.Context, millID string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error) {
	if len(actions) == 0 {
		return nil, domain.ErrValidation
	}
	rows, err := s.events.ByAction(ctx, millID, actions, from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger by action: %w", err)
	}
	if rows == nil {
		rows = []entity.ActionBalanceRow{}
	}
	return rows, nil
}

// List returns a raw paginated event listing with free-text search over
// commodity and note, plus the total match count.
func (s *Store) List(ctx context.Context, millID string, f entity.EventFilter, limit, offset int) ([]*entity.StockEvent, int, error) {
	events, total, err := s.events.List(ctx, millID, f, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger list: %w", err)
	}
	return events, total, nil
}

func validateEvent(ev *entity.StockEvent) error {
	switch {
	case ev.MillID == "":
		return domain.ErrValidation
	case ev.Commodity == "":
		return domain.ErrValidation
	case ev.Direction != entity.DirectionCredit && ev.Direction != entity.DirectionDebit:
		return domain.ErrValidation
	case ev.Quantity.IsNegative():
		return domain.ErrValidation
	case ev.BagCount < 0:
		return domain.ErrValidation
	case ev.SourceKind == "" || ev.SourceID == "":
		return domain.ErrValidation
	}
	return nil
}
