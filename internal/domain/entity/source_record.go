package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceRecord is a business transaction document (purchase, sale, inward or
// outward of a commodity). All kinds share this schema; each kind persists to
// its own table. Existence is the only state: records are hard-deleted.
type SourceRecord struct {
	ID            string
	MillID        string
	RecordDate    time.Time
	PartyName     string
	BrokerName    string
	VehicleNumber string
	Commodity     string // only "other goods" kinds take it from the payload
	Variety       string
	Quantity      decimal.Decimal
	BagCount      int
	Rate          decimal.Decimal
	Notes         string
	DocNumber     string // assigned once at create, immutable afterwards
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecordFilter narrows source-record listings.
type RecordFilter struct {
	From     *time.Time
	To       *time.Time
	Search   string // free text over party, broker and doc number
	SortBy   string // "record_date" (default) or "created_at"
	SortDesc bool
}

// RecordSummary is the per-kind aggregate computed directly over source
// records, complementary to the ledger summary.
type RecordSummary struct {
	RecordCount   int             `json:"record_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalBags     int             `json:"total_bags"`
}
