package records

import (
	"context"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// Mirror is the slice of the ledger the record service needs: record the
// stock effect of a create, re-sync it on update, drop it on delete.
// *ledger.Store satisfies it.
type Mirror interface {
	Record(ctx context.Context, ev *entity.StockEvent) error
	UpdateByRef(ctx context.Context, sourceKind, sourceID string, patch entity.StockEventPatch) error
	DeleteByRef(ctx context.Context, sourceKind, sourceID string) error
}

// NumberSource mints document numbers. *sequence.Generator satisfies it.
type NumberSource interface {
	Assign(ctx context.Context, millID, kind, prefix string, date time.Time) (string, error)
}
