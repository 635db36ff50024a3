// Package sequence assigns day-scoped document numbers. The serial source is
// an atomic increment behind repository.SequenceRepository, so concurrent
// creates for the same (mill, kind, day) always mint distinct numbers.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/docnum"
	"github.com/millbooks/millbooks-api/internal/domain/repository"
)

// Generator mints document numbers for new source records.
type Generator struct {
	seq repository.SequenceRepository
}

// NewGenerator builds the generator over a serial source.
func NewGenerator(seq repository.SequenceRepository) *Generator {
	return &Generator{seq: seq}
}

// Assign mints the next document number for (millID, kind) on the record's
// local calendar day. The serial resets to 1 at each day boundary and is never
// reused, even after the owning record is deleted.
func (g *Generator) Assign(ctx context.Context, millID, kind, prefix string, date time.Time) (string, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	serial, err := g.seq.Next(ctx, millID, kind, day)
	if err != nil {
		return "", fmt.Errorf("next serial for %s/%s: %w", millID, kind, err)
	}
	return docnum.Format(prefix, day, serial), nil
}
