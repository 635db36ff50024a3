// Package reports composes read-only ledger aggregates into the cross-cutting
// views the mill office works from: current positions, as-of balances and
// daily movement reports.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// LedgerReader is the read slice of the ledger the reports need.
// *ledger.Store satisfies it.
type LedgerReader interface {
	Balance(ctx context.Context, millID string, commodity, variety string, asOf *time.Time) ([]entity.BalanceRow, error)
	Summary(ctx context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error)
	ByAction(ctx context.Context, millID string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error)
}

// Service is the reporting facade. Pure reads; every view returns zeroed
// totals rather than nil or an error when no events match.
type Service struct {
	ledger LedgerReader
}

// NewService builds the reporting service.
func NewService(ledger LedgerReader) *Service {
	return &Service{ledger: ledger}
}

// Position returns the balance rows for every commodity the mill holds,
// optionally as of a cutoff date.
func (s *Service) Position(ctx context.Context, millID string, asOf *time.Time) ([]entity.BalanceRow, error) {
	return s.ledger.Balance(ctx, millID, "", "", asOf)
}

// CommodityPosition returns the per-variety balance rows and the movement
// summary for one commodity, e.g. the current Paddy position or the FRK
// balance as of a date.
func (s *Service) CommodityPosition(ctx context.Context, millID, commodity string, asOf *time.Time) ([]entity.BalanceRow, *entity.LedgerSummary, error) {
	rows, err := s.ledger.Balance(ctx, millID, commodity, "", asOf)
	if err != nil {
		return nil, nil, fmt.Errorf("commodity position: %w", err)
	}
	sum, err := s.ledger.Summary(ctx, millID, entity.EventFilter{Commodity: commodity, To: asOf})
	if err != nil {
		return nil, nil, fmt.Errorf("commodity position summary: %w", err)
	}
	return rows, sum, nil
}

// MovementSummary aggregates ledger movement over a window, optionally
// restricted to a commodity and variety.
func (s *Service) MovementSummary(ctx context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error) {
	return s.ledger.Summary(ctx, millID, f)
}

// DailyActionReport aggregates one day's movement restricted to the named
// actions (logical OR), grouped by commodity and variety. Feeds the daily
// position registers.
func (s *Service) DailyActionReport(ctx context.Context, millID string, day time.Time, actions []string) ([]entity.ActionBalanceRow, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return s.ledger.ByAction(ctx, millID, actions, &from, &to)
}
