package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millbooks/millbooks-api/internal/application/reports"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
)

// fakeLedger returns canned aggregates and captures the filters it was asked
// for.
type fakeLedger struct {
	balanceRows []entity.BalanceRow
	summary     *entity.LedgerSummary
	actionRows  []entity.ActionBalanceRow

	balanceCommodity string
	summaryFilter    entity.EventFilter
	actions          []string
	actionFrom       *time.Time
	actionTo         *time.Time
}

func (f *fakeLedger) Balance(_ context.Context, _ string, commodity, _ string, _ *time.Time) ([]entity.BalanceRow, error) {
	f.balanceCommodity = commodity
	if f.balanceRows == nil {
		return []entity.BalanceRow{}, nil
	}
	return f.balanceRows, nil
}

func (f *fakeLedger) Summary(_ context.Context, _ string, filter entity.EventFilter) (*entity.LedgerSummary, error) {
	f.summaryFilter = filter
	if f.summary == nil {
		return &entity.LedgerSummary{}, nil
	}
	return f.summary, nil
}

func (f *fakeLedger) ByAction(_ context.Context, _ string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error) {
	f.actions = actions
	f.actionFrom = from
	f.actionTo = to
	if f.actionRows == nil {
		return []entity.ActionBalanceRow{}, nil
	}
	return f.actionRows, nil
}

func TestCommodityPosition(t *testing.T) {
	fake := &fakeLedger{
		balanceRows: []entity.BalanceRow{
			{Commodity: "Paddy", Variety: "Mota", Balance: decimal.NewFromInt(75)},
		},
		summary: &entity.LedgerSummary{TransactionCount: 2, NetMovement: decimal.NewFromInt(75)},
	}
	svc := reports.NewService(fake)

	rows, sum, err := svc.CommodityPosition(context.Background(), "M1", "Paddy", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Balance.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, 2, sum.TransactionCount)
	assert.Equal(t, "Paddy", fake.balanceCommodity)
	assert.Equal(t, "Paddy", fake.summaryFilter.Commodity)
}

// No matching events still returns zeroed totals, never nil.
func TestCommodityPosition_EmptyIsZeroed(t *testing.T) {
	svc := reports.NewService(&fakeLedger{})

	rows, sum, err := svc.CommodityPosition(context.Background(), "M1", "FRK", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.TransactionCount)
	assert.True(t, sum.NetMovement.IsZero())
}

// The daily report queries exactly the requested day's window.
func TestDailyActionReport_WindowsOneDay(t *testing.T) {
	fake := &fakeLedger{}
	svc := reports.NewService(fake)

	day := time.Date(2024, 3, 5, 14, 22, 0, 0, time.UTC)
	_, err := svc.DailyActionReport(context.Background(), "M1", day, []string{"Outward", "Sale"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Outward", "Sale"}, fake.actions)
	require.NotNil(t, fake.actionFrom)
	require.NotNil(t, fake.actionTo)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *fake.actionFrom)
	assert.True(t, fake.actionTo.Before(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fake.actionTo.After(*fake.actionFrom))
}
