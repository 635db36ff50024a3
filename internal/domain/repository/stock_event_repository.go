package repository

import (
	"context"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// StockEventRepository is the persistence port for ledger events.
// Lookups that miss return (nil, nil); callers decide whether that is an error.
type StockEventRepository interface {
	Create(ctx context.Context, ev *entity.StockEvent) error
	GetByRef(ctx context.Context, sourceKind, sourceID string) (*entity.StockEvent, error)
	Update(ctx context.Context, ev *entity.StockEvent) error
	// DeleteByRef removes the 0-or-1 matching event and reports whether a row
	// was deleted.
	DeleteByRef(ctx context.Context, sourceKind, sourceID string) (bool, error)
	Balance(ctx context.Context, millID string, f entity.EventFilter) ([]entity.BalanceRow, error)
	Summary(ctx context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error)
	ByAction(ctx context.Context, millID string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error)
	List(ctx context.Context, millID string, f entity.EventFilter, limit, offset int) ([]*entity.StockEvent, int, error)
}
