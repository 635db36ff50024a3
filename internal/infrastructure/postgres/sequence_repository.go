package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo mints day-scoped serials with a single atomic upsert. The row
// lock taken by ON CONFLICT DO UPDATE serializes concurrent callers on the
// same (mill, kind, day), so each one sees a distinct value. This replaces
// the old count-then-assign read, which handed the same serial to writers
// racing within a day.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository builds the adapter. Pass a pool or tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next returns the next serial for (millID, kind) on the given local calendar
// day, starting at 1. One round trip, atomic.
func (r *SequenceRepo) Next(ctx context.Context, millID, kind string, day time.Time) (int, error) {
	query := `
		INSERT INTO document_sequences (mill_id, kind, seq_date, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (mill_id, kind, seq_date)
		DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`
	var value int
	seqDate := day.Format("2006-01-02")
	if err := r.q.QueryRow(ctx, query, millID, kind, seqDate).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence %s/%s/%s: %w", millID, kind, seqDate, err)
	}
	return value, nil
}
