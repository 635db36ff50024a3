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

var _ repository.RecordRepository = (*RecordRepo)(nil)

const recordColumns = "id, mill_id, record_date, party_name, broker_name, vehicle_number, commodity, variety, quantity, bag_count, rate, notes, doc_number, created_by, created_at, updated_at"

// RecordRepo is the PostgreSQL adapter for one source-record kind. The table
// name comes from the compile-time kind configuration; every kind shares the
// same column layout.
type RecordRepo struct {
	q     Querier
	table string
}

// NewRecordRepository builds the adapter bound to one kind's table. Pass a
// pool or tx (Querier).
func NewRecordRepository(q Querier, table string) *RecordRepo {
	return &RecordRepo{q: q, table: table}
}

// Create inserts a new source record. A document-number collision on the
// partial unique index maps to domain.ErrDuplicate so the caller can retry
// with a fresh serial.
func (r *RecordRepo) Create(ctx context.Context, rec *entity.SourceRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.table, recordColumns)
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.MillID, rec.RecordDate, rec.PartyName, rec.BrokerName,
		rec.VehicleNumber, rec.Commodity, rec.Variety, rec.Quantity, rec.BagCount,
		rec.Rate, rec.Notes, rec.DocNumber, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return nil
}

// GetByID returns the record scoped to the mill, or (nil, nil) when absent.
func (r *RecordRepo) GetByID(ctx context.Context, millID, id string) (*entity.SourceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE mill_id = $1 AND id = $2", recordColumns, r.table)
	rec, err := scanRecord(r.q.QueryRow(ctx, query, millID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get from %s: %w", r.table, err)
	}
	return rec, nil
}

// List pages through the mill's records with date range and free-text search
// over party, broker and document number. Returns the total match count.
func (r *RecordRepo) List(ctx context.Context, millID string, f entity.RecordFilter, limit, offset int) ([]*entity.SourceRecord, int, error) {
	where := " WHERE mill_id = $1"
	args := []any{millID}
	pos := 2
	if f.From != nil {
		where += fmt.Sprintf(" AND record_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND record_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where += fmt.Sprintf(" AND (party_name ILIKE $%d OR broker_name ILIKE $%d OR doc_number ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+s+"%")
		pos++
	}

	var total int
	if err := r.q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.table, where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	order := "record_date"
	if f.SortBy == "created_at" {
		order = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		recordColumns, r.table, where, order, dir, pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()

	var out []*entity.SourceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// Update re-saves the mutable fields. The document number is deliberately
// absent from the SET list: it is immutable after assignment.
func (r *RecordRepo) Update(ctx context.Context, rec *entity.SourceRecord) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET record_date = $1, party_name = $2, broker_name = $3, vehicle_number = $4,
		    commodity = $5, variety = $6, quantity = $7, bag_count = $8, rate = $9,
		    notes = $10, updated_at = $11
		WHERE mill_id = $12 AND id = $13`, r.table)
	tag, err := r.q.Exec(ctx, query,
		rec.RecordDate, rec.PartyName, rec.BrokerName, rec.VehicleNumber,
		rec.Commodity, rec.Variety, rec.Quantity, rec.BagCount, rec.Rate,
		rec.Notes, rec.UpdatedAt, rec.MillID, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete hard-deletes the record and reports whether a row went away.
func (r *RecordRepo) Delete(ctx context.Context, millID, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE mill_id = $1 AND id = $2", r.table),
		millID, id,
	)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", r.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteMany deletes the matching ids and returns the ids actually deleted.
// Unmatched ids are silently skipped.
func (r *RecordRepo) DeleteMany(ctx context.Context, millID string, ids []string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE mill_id = $1 AND id = ANY($2) RETURNING id", r.table),
		millID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("bulk delete from %s: %w", r.table, err)
	}
	defer rows.Close()

	var deleted []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted id: %w", err)
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}

// Summary aggregates the mill's records over an optional date range.
func (r *RecordRepo) Summary(ctx context.Context, millID string, from, to *time.Time) (*entity.RecordSummary, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(bag_count), 0)
		FROM %s WHERE mill_id = $1`, r.table)
	args := []any{millID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND record_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND record_date <= $%d", pos)
		args = append(args, *to)
	}

	var sum entity.RecordSummary
	err := r.q.QueryRow(ctx, query, args...).Scan(&sum.RecordCount, &sum.TotalQuantity, &sum.TotalBags)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", r.table, err)
	}
	return &sum, nil
}

func scanRecord(row rowScanner) (*entity.SourceRecord, error) {
	var rec entity.SourceRecord
	err := row.Scan(
		&rec.ID, &rec.MillID, &rec.RecordDate, &rec.PartyName, &rec.BrokerName,
		&rec.VehicleNumber, &rec.Commodity, &rec.Variety, &rec.Quantity, &rec.BagCount,
		&rec.Rate, &rec.Notes, &rec.DocNumber, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
