package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/millbooks/millbooks-api/internal/domain"
	"github.com/millbooks/millbooks-api/internal/domain/entity"
	"github.com/millbooks/millbooks-api/internal/domain/repository"
)

var _ repository.StockEventRepository = (*StockEventRepo)(nil)

const stockEventColumns = "id, mill_id, event_date, commodity, variety, direction, action, quantity, bag_count, source_kind, source_id, note, recorded_by, created_at"

// StockEventRepo is the PostgreSQL adapter for the ledger event port (usable
// with pool or tx).
type StockEventRepo struct {
	q Querier
}

// NewStockEventRepository builds the adapter. Pass a pool or tx (Querier).
func NewStockEventRepository(q Querier) *StockEventRepo {
	return &StockEventRepo{q: q}
}

// Create persists a stock event. The unique index on (source_kind, source_id)
// enforces the 1:1 mirror; a violation maps to domain.ErrDuplicate.
func (r *StockEventRepo) Create(ctx context.Context, ev *entity.StockEvent) error {
	query := `
		INSERT INTO stock_events (` + stockEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.MillID, ev.EventDate, ev.Commodity, ev.Variety, ev.Direction,
		ev.Action, ev.Quantity, ev.BagCount, ev.SourceKind, ev.SourceID,
		ev.Note, ev.RecordedBy, ev.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock event: %w", err)
	}
	return nil
}

// GetByRef returns the event mirroring (sourceKind, sourceID), or (nil, nil)
// when no mirror exists.
func (r *StockEventRepo) GetByRef(ctx context.Context, sourceKind, sourceID string) (*entity.StockEvent, error) {
	query := `
		SELECT ` + stockEventColumns + `
		FROM stock_events WHERE source_kind = $1 AND source_id = $2`
	ev, err := scanStockEvent(r.q.QueryRow(ctx, query, sourceKind, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock event by ref: %w", err)
	}
	return ev, nil
}

// Update re-saves a mirrored event after a patch merge.
func (r *StockEventRepo) Update(ctx context.Context, ev *entity.StockEvent) error {
	query := `
		UPDATE stock_events
		SET event_date = $1, commodity = $2, variety = $3, quantity = $4,
		    bag_count = $5, note = $6
		WHERE id = $7`
	tag, err := r.q.Exec(ctx, query,
		ev.EventDate, ev.Commodity, ev.Variety, ev.Quantity, ev.BagCount, ev.Note, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByRef deletes the 0-or-1 matching events and reports whether a row
// went away.
func (r *StockEventRepo) DeleteByRef(ctx context.Context, sourceKind, sourceID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM stock_events WHERE source_kind = $1 AND source_id = $2`,
		sourceKind, sourceID,
	)
	if err != nil {
		return false, fmt.Errorf("delete stock event by ref: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Balance groups events by (commodity, variety) and splits the quantity sums
// by direction. Ordered by commodity then variety.
func (r *StockEventRepo) Balance(ctx context.Context, millID string, f entity.EventFilter) ([]entity.BalanceRow, error) {
	query := `
		SELECT commodity, variety,
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'CREDIT'), 0) AS credit,
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'DEBIT'), 0) AS debit,
		       COALESCE(SUM(bag_count), 0) AS bags
		FROM stock_events WHERE mill_id = $1`
	args := []any{millID}
	query, args = appendEventFilters(query, args, f)
	query += " GROUP BY commodity, variety ORDER BY commodity, variety"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("balance query: %w", err)
	}
	defer rows.Close()

	var out []entity.BalanceRow
	for rows.Next() {
		var b entity.BalanceRow
		if err := rows.Scan(&b.Commodity, &b.Variety, &b.Credit, &b.Debit, &b.Bags); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		b.Balance = b.Credit.Sub(b.Debit)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Summary aggregates the matching events into a single row. No matches yield
// the zero-valued summary.
func (r *StockEventRepo) Summary(ctx context.Context, millID string, f entity.EventFilter) (*entity.LedgerSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'CREDIT'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'DEBIT'), 0),
		       COALESCE(SUM(bag_count), 0)
		FROM stock_events WHERE mill_id = $1`
	args := []any{millID}
	query, args = appendEventFilters(query, args, f)

	var sum entity.LedgerSummary
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&sum.TransactionCount, &sum.TotalCredit, &sum.TotalDebit, &sum.TotalBags,
	)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	sum.NetMovement = sum.TotalCredit.Sub(sum.TotalDebit)
	return &sum, nil
}

// ByAction aggregates events restricted to the named actions (OR), grouped by
// (commodity, variety).
func (r *StockEventRepo) ByAction(ctx context.Context, millID string, actions []string, from, to *time.Time) ([]entity.ActionBalanceRow, error) {
	query := `
		SELECT commodity, variety,
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'CREDIT'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'DEBIT'), 0),
		       COALESCE(SUM(bag_count), 0),
		       COUNT(*)
		FROM stock_events WHERE mill_id = $1 AND action = ANY($2)`
	args := []any{millID, actions}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND event_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND event_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " GROUP BY commodity, variety ORDER BY commodity, variety"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("by-action query: %w", err)
	}
	defer rows.Close()

	var out []entity.ActionBalanceRow
	for rows.Next() {
		var a entity.ActionBalanceRow
		if err := rows.Scan(&a.Commodity, &a.Variety, &a.Credit, &a.Debit, &a.Bags, &a.Count); err != nil {
			return nil, fmt.Errorf("scan by-action row: %w", err)
		}
		a.Net = a.Credit.Sub(a.Debit)
		out = append(out, a)
	}
	return out, rows.Err()
}

// List pages through raw events with the filter applied and returns the total
// match count.
func (r *StockEventRepo) List(ctx context.Context, millID string, f entity.EventFilter, limit, offset int) ([]*entity.StockEvent, int, error) {
	where := " WHERE mill_id = $1"
	args := []any{millID}
	where, args = appendEventFilters(where, args, f)

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM stock_events"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock events: %w", err)
	}

	order := "event_date"
	if f.SortBy == "created_at" {
		order = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM stock_events%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		stockEventColumns, where, order, dir, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockEvent
	for rows.Next() {
		ev, err := scanStockEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock event: %w", err)
		}
		out = append(out, ev)
	}
	return out, total, rows.Err()
}

// appendEventFilters grows the WHERE clause with the optional filter parts.
func appendEventFilters(query string, args []any, f entity.EventFilter) (string, []any) {
	pos := len(args) + 1
	if f.Commodity != "" {
		query += fmt.Sprintf(" AND commodity = $%d", pos)
		args = append(args, f.Commodity)
		pos++
	}
	if f.Variety != "" {
		query += fmt.Sprintf(" AND variety = $%d", pos)
		args = append(args, f.Variety)
		pos++
	}
	if len(f.Actions) > 0 {
		query += fmt.Sprintf(" AND action = ANY($%d)", pos)
		args = append(args, f.Actions)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND event_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND event_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += fmt.Sprintf(" AND (commodity ILIKE $%d OR note ILIKE $%d)", pos, pos)
		args = append(args, "%"+s+"%")
		pos++
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockEvent(row rowScanner) (*entity.StockEvent, error) {
	var ev entity.StockEvent
	err := row.Scan(
		&ev.ID, &ev.MillID, &ev.EventDate, &ev.Commodity, &ev.Variety,
		&ev.Direction, &ev.Action, &ev.Quantity, &ev.BagCount,
		&ev.SourceKind, &ev.SourceID, &ev.Note, &ev.RecordedBy, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
