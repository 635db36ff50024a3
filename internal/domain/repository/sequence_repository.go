package repository

import (
	"context"
	"time"
)

// SequenceRepository mints day-scoped serials for document numbers. Next must
// be atomic: concurrent calls for the same (mill, kind, day) return distinct
// consecutive values, starting at 1 for the first call of the day. Serials are
// never reused, even after the owning record is deleted.
type SequenceRepository interface {
	Next(ctx context.Context, millID, kind string, day time.Time) (int, error)
}
