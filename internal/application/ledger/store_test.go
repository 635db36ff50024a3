package ledger_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millbooks/millbooks-api/internal/application/ledger"
	"github.com/millbooks/millbooks-api/internal/domain"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
	"github.com/millbooks/millbooks-api/pkg/logger"
)

// memoryEventRepo implements repository.StockEventRepository in memory with
// the same contracts as the Postgres adapter: unique (sourceKind, sourceId),
// (nil, nil) on missed lookups, sorted aggregate rows.
type memoryEventRepo struct {
	events []*entity.StockEvent
	// failRefs makes DeleteByRef fail for these source ids.
	failRefs map[string]bool
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{failRefs: map[string]bool{}}
}

func (m *memoryEventRepo) Create(_ context.Context, ev *entity.StockEvent) error {
	for _, e := range m.events {
		if e.SourceKind == ev.SourceKind && e.SourceID == ev.SourceID {
			return domain.ErrDuplicate
		}
	}
	cp := *ev
	m.events = append(m.events, &cp)
	return nil
}

func (m *memoryEventRepo) GetByRef(_ context.Context, sourceKind, sourceID string) (*entity.StockEvent, error) {
	for _, e := range m.events {
		if e.SourceKind == sourceKind && e.SourceID == sourceID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryEventRepo) Update(_ context.Context, ev *entity.StockEvent) error {
	for i, e := range m.events {
		if e.ID == ev.ID {
			cp := *ev
			m.events[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryEventRepo) DeleteByRef(_ context.Context, sourceKind, sourceID string) (bool, error) {
	if m.failRefs[sourceID] {
		return false, errors.New("storage down")
	}
	for i, e := range m.events {
		if e.SourceKind == sourceKind && e.SourceID == sourceID {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEventRepo) matches(ev *entity.StockEvent, millID string, f entity.EventFilter) bool {
	if ev.MillID != millID {
		return false
	}
	if f.Commodity != "" && ev.Commodity != f.Commodity {
		return false
	}
	if f.Variety != "" && ev.Variety != f.Variety {
		return false
	}
	if f.From != nil && ev.EventDate.Before(*f.From) {
		return false
	}
	if f.To != nil && ev.EventDate.After(*f.To) {
		return false
	}
	return true
}

func (m *memoryEventRepo) Balance(_ context.Context, millID string, f entity.EventFilter) ([]entity.BalanceRow, error) {
	groups := map[[2]string]*entity.BalanceRow{}
	for _, ev := range m.events {
		if !m.matches(ev, millID, f) {
			continue
		}
		key := [2]string{ev.Commodity, ev.Variety}
		row, ok := groups[key]
		if !ok {
			row = &entity.BalanceRow{Commodity: ev.Commodity, Variety: ev.Variety}
			groups[key] = row
		}
		if ev.Direction == entity.DirectionCredit {
			row.Credit = row.Credit.Add(ev.Quantity)
		} else {
			row.Debit = row.Debit.Add(ev.Quantity)
		}
		row.Bags += ev.BagCount
	}
	var out []entity.BalanceRow
	for _, row := range groups {
		row.Balance = row.Credit.Sub(row.Debit)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commodity != out[j].Commodity {
			return out[i].Commodity < out[j].Commodity
		}
		return out[i].Variety < out[j].Variety
	})
	return out, nil
}

func (m *memoryEventRepo) Summary(_ context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error) {
	var sum entity.LedgerSummary
	for _, ev := range m.events {
		if !m.matches(ev, millID, f) {
			continue
		}
		sum.TransactionCount++
		if ev.Direction == entity.DirectionCredit {
			sum.TotalCredit = sum.TotalCredit.Add(ev.Quantity)
		} else {
			sum.TotalDebit = sum.TotalDebit.Add(ev.Quantity)
		}
		sum.TotalBags += ev.BagCount
	}
	sum.NetMovement = sum.TotalCredit.Sub(sum.TotalDebit)
	return &sum, nil
}

func (m *memoryEventRepo) ByAction(_ context.Context, millID string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error) {
	allowed := map[string]bool{}
	for _, a := range actions {
		allowed[a] = true
	}
	groups := map[[2]string]*entity.ActionBalanceRow{}
	for _, ev := range m.events {
		if !m.matches(ev, millID, entity.EventFilter{From: from, To: to}) || !allowed[ev.Action] {
			continue
		}
		key := [2]string{ev.Commodity, ev.Variety}
		row, ok := groups[key]
		if !ok {
			row = &entity.ActionBalanceRow{Commodity: ev.Commodity, Variety: ev.Variety}
			groups[key] = row
		}
		if ev.Direction == entity.DirectionCredit {
			row.Credit = row.Credit.Add(ev.Quantity)
		} else {
			row.Debit = row.Debit.Add(ev.Quantity)
		}
		row.Bags += ev.BagCount
		row.Count++
	}
	var out []entity.ActionBalanceRow
	for _, row := range groups {
		row.Net = row.Credit.Sub(row.Debit)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commodity != out[j].Commodity {
			return out[i].Commodity < out[j].Commodity
		}
		return out[i].Variety < out[j].Variety
	})
	return out, nil
}

func (m *memoryEventRepo) List(_ context.Context, millID string, f entity.EventFilter, limit, offset int) ([]*entity.StockEvent, int, error) {
	var all []*entity.StockEvent
	for _, ev := range m.events {
		if m.matches(ev, millID, f) {
			cp := *ev
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func event(mill, commodity, variety, direction, action string, qty float64, bags int, kind, sourceID string) *entity.StockEvent {
	return &entity.StockEvent{
		MillID:     mill,
		EventDate:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Commodity:  commodity,
		Variety:    variety,
		Direction:  direction,
		Action:     action,
		Quantity:   decimal.NewFromFloat(qty),
		BagCount:   bags,
		SourceKind: kind,
		SourceID:   sourceID,
	}
}

func TestRecord_Validation(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*entity.StockEvent)
	}{
		{"missing mill", func(ev *entity.StockEvent) { ev.MillID = "" }},
		{"missing commodity", func(ev *entity.StockEvent) { ev.Commodity = "" }},
		{"bad direction", func(ev *entity.StockEvent) { ev.Direction = "SIDEWAYS" }},
		{"negative quantity", func(ev *entity.StockEvent) { ev.Quantity = decimal.NewFromInt(-1) }},
		{"negative bags", func(ev *entity.StockEvent) { ev.BagCount = -1 }},
		{"missing source ref", func(ev *entity.StockEvent) { ev.SourceID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := event("M1", "Paddy", "Mota", entity.DirectionCredit, "Purchase", 10, 5, "paddy_purchase", "r1")
			tc.mutate(ev)
			err := store.Record(ctx, ev)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRecord_AssignsIDAndPersists(t *testing.T) {
	repo := newMemoryEventRepo()
	store := ledger.NewStore(repo, logger.Nop())

	ev := event("M1", "Paddy", "Mota", entity.DirectionCredit, "Purchase", 10, 5, "paddy_purchase", "r1")
	require.NoError(t, store.Record(context.Background(), ev))

	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())
	stored, err := repo.GetByRef(context.Background(), "paddy_purchase", "r1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

// The 1:1 mirror invariant: a second event for the same source ref is a
// duplicate.
func TestRecord_DuplicateRef(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "", entity.DirectionCredit, "Purchase", 10, 0, "paddy_purchase", "r1")))
	err := store.Record(ctx, event("M1", "Paddy", "", entity.DirectionCredit, "Purchase", 20, 0, "paddy_purchase", "r1"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// One CREDIT of 120 and one DEBIT of 45 on Paddy/Mota -> balance 75.
func TestBalance_CreditMinusDebit(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "Mota", entity.DirectionCredit, "Purchase", 120, 60, "paddy_purchase", "r1")))
	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "Mota", entity.DirectionDebit, "Sale", 45, 20, "paddy_sale", "r2")))

	rows, err := store.Balance(ctx, "M1", "", "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Paddy", rows[0].Commodity)
	assert.Equal(t, "Mota", rows[0].Variety)
	assert.True(t, rows[0].Balance.Equal(decimal.NewFromInt(75)), "balance = %s", rows[0].Balance)
	assert.Equal(t, 80, rows[0].Bags)
}

// The balance is invariant under event insertion order.
func TestBalance_OrderInvariant(t *testing.T) {
	events := []*entity.StockEvent{
		event("M1", "Rice", "Sona", entity.DirectionCredit, "Inward", 100, 10, "rice_inward", "a"),
		event("M1", "Rice", "Sona", entity.DirectionDebit, "Sale", 30, 3, "rice_sale", "b"),
		event("M1", "Rice", "Sona", entity.DirectionDebit, "Outward", 20, 2, "rice_outward", "c"),
		event("M1", "Rice", "Sona", entity.DirectionCredit, "Purchase", 5, 1, "rice_purchase", "d"),
	}
	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}}

	for _, perm := range permutations {
		store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
		for _, i := range perm {
			cp := *events[i]
			require.NoError(t, store.Record(context.Background(), &cp))
		}
		rows, err := store.Balance(context.Background(), "M1", "Rice", "", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Balance.Equal(decimal.NewFromInt(55)), "order %v: balance = %s", perm, rows[0].Balance)
	}
}

func TestBalance_TenantIsolation(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "", entity.DirectionCredit, "Purchase", 100, 0, "paddy_purchase", "r1")))
	require.NoError(t, store.Record(ctx, event("M2", "Paddy", "", entity.DirectionCredit, "Purchase", 999, 0, "paddy_purchase", "r2")))

	rows, err := store.Balance(ctx, "M1", "", "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Balance.Equal(decimal.NewFromInt(100)))
}

// updateByRef on a source id with no mirror reports not-found without
// raising anything else and creates no event.
func TestUpdateByRef_MissingMirror(t *testing.T) {
	repo := newMemoryEventRepo()
	store := ledger.NewStore(repo, logger.Nop())

	qty := decimal.NewFromInt(50)
	err := store.UpdateByRef(context.Background(), "paddy_purchase", "ghost", entity.StockEventPatch{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.events)
}

func TestUpdateByRef_MergesPatch(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "Mota", entity.DirectionCredit, "Purchase", 120, 60, "paddy_purchase", "r1")))

	qty := decimal.NewFromInt(90)
	variety := "Sarna"
	require.NoError(t, store.UpdateByRef(ctx, "paddy_purchase", "r1", entity.StockEventPatch{Quantity: &qty, Variety: &variety}))

	rows, err := store.Balance(ctx, "M1", "Paddy", "Sarna", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Credit.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, 60, rows[0].Bags) // untouched by the patch
}

// Deleting twice is a no-op the second time.
func TestDeleteByRef_Idempotent(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Paddy", "", entity.DirectionCredit, "Purchase", 10, 0, "paddy_purchase", "r1")))

	require.NoError(t, store.DeleteByRef(ctx, "paddy_purchase", "r1"))
	require.NoError(t, store.DeleteByRef(ctx, "paddy_purchase", "r1"))

	sum, err := store.Summary(ctx, "M1", entity.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TransactionCount)
}

// A failing ref does not block the rest of the batch.
func TestBulkDeleteByRefs_IndependentRefs(t *testing.T) {
	repo := newMemoryEventRepo()
	repo.failRefs["b"] = true
	store := ledger.NewStore(repo, logger.Nop())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Record(ctx, event("M1", "Paddy", "", entity.DirectionCredit, "Purchase", 10, 0, "paddy_purchase", id)))
	}

	store.BulkDeleteByRefs(ctx, []ledger.Ref{
		{SourceKind: "paddy_purchase", SourceID: "a"},
		{SourceKind: "paddy_purchase", SourceID: "b"},
		{SourceKind: "paddy_purchase", SourceID: "c"},
	})

	// a and c went away despite b failing.
	require.Len(t, repo.events, 1)
	assert.Equal(t, "b", repo.events[0].SourceID)
}

// An empty window yields a zero-valued summary, never nil.
func TestSummary_EmptyWindowIsZero(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())

	sum, err := store.Summary(context.Background(), "M1", entity.EventFilter{})
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.TransactionCount)
	assert.True(t, sum.TotalCredit.IsZero())
	assert.True(t, sum.TotalDebit.IsZero())
	assert.True(t, sum.NetMovement.IsZero())
	assert.Equal(t, 0, sum.TotalBags)
}

func TestByAction_RestrictsToActions(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, event("M1", "Rice", "", entity.DirectionDebit, "Outward", 40, 4, "rice_outward", "a")))
	require.NoError(t, store.Record(ctx, event("M1", "Rice", "", entity.DirectionDebit, "Sale", 25, 2, "rice_sale", "b")))
	require.NoError(t, store.Record(ctx, event("M1", "Rice", "", entity.DirectionCredit, "Inward", 100, 10, "rice_inward", "c")))

	rows, err := store.ByAction(ctx, "M1", []string{"Outward", "Sale"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Debit.Equal(decimal.NewFromInt(65)))
	assert.True(t, rows[0].Credit.IsZero())
	assert.Equal(t, 2, rows[0].Count)
}

func TestByAction_NoActionsIsValidationError(t *testing.T) {
	store := ledger.NewStore(newMemoryEventRepo(), logger.Nop())
	_, err := store.ByAction(context.Background(), "M1", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
