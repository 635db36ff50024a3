package repository

import (
	"context"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// RecordRepository is the persistence port for one source-record kind. Every
// kind has its own table; one repository instance is bound to one table.
// Lookups that miss return (nil, nil).
type RecordRepository interface {
	Create(ctx context.Context, rec *entity.SourceRecord) error
	GetByID(ctx context.Context, millID, id string) (*entity.SourceRecord, error)
	List(ctx context.Context, millID string, f entity.RecordFilter, limit, offset int) ([]*entity.SourceRecord, int, error)
	Update(ctx context.Context, rec *entity.SourceRecord) error
	// Delete hard-deletes the record and reports whether a row was deleted.
	Delete(ctx context.Context, millID, id string) (bool, error)
	// DeleteMany deletes the matching ids and returns the ids actually
	// deleted; unmatched ids are silently skipped.
	DeleteMany(ctx context.Context, millID string, ids []string) ([]string, error)
	Summary(ctx context.Context, millID string, from, to *time.Time) (*entity.RecordSummary, error)
}
