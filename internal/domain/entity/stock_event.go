package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock movement directions. CREDIT increases the balance (inbound stock),
// DEBIT decreases it (outbound stock).
const (
	DirectionCredit = "CREDIT"
	DirectionDebit  = "DEBIT"
)

// StockEvent is one ledger entry mirroring a source record's effect on
// inventory. At most one event exists per (SourceKind, SourceID).
type StockEvent struct {
	ID         string
	MillID     string
	EventDate  time.Time
	Commodity  string
	Variety    string // empty = no variety
	Direction  string
	Action     string // free-form label: "Purchase", "Sale", "Outward"...
	Quantity   decimal.Decimal
	BagCount   int
	SourceKind string
	SourceID   string
	Note       string
	RecordedBy string
	CreatedAt  time.Time
}

// StockEventPatch carries the fields a source-record update may re-sync into
// the mirrored event. Nil pointers leave the stored value untouched.
type StockEventPatch struct {
	EventDate *time.Time
	Quantity  *decimal.Decimal
	BagCount  *int
	Variety   *string
	Note      *string
}

// Apply merges the patch into the event.
func (p StockEventPatch) Apply(ev *StockEvent) {
	if p.EventDate != nil {
		ev.EventDate = *p.EventDate
	}
	if p.Quantity != nil {
		ev.Quantity = *p.Quantity
	}
	if p.BagCount != nil {
		ev.BagCount = *p.BagCount
	}
	if p.Variety != nil {
		ev.Variety = *p.Variety
	}
	if p.Note != nil {
		ev.Note = *p.Note
	}
}

// EventFilter narrows ledger listings and aggregates.
type EventFilter struct {
	Commodity string
	Variety   string
	Actions   []string
	From      *time.Time
	To        *time.Time
	Search    string // free text over commodity and note
	SortBy    string // "event_date" (default) or "created_at"
	SortDesc  bool
}

// BalanceRow is the derived position for one (commodity, variety) pair.
// Balance = Credit - Debit. Never persisted.
type BalanceRow struct {
	Commodity string          `json:"commodity"`
	Variety   string          `json:"variety,omitempty"`
	Credit    decimal.Decimal `json:"credit"`
	Debit     decimal.Decimal `json:"debit"`
	Balance   decimal.Decimal `json:"balance"`
	Bags      int             `json:"bags"`
}

// LedgerSummary aggregates ledger movement over a window. A window with no
// events yields the zero value, never nil.
type LedgerSummary struct {
	TransactionCount int             `json:"transaction_count"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	NetMovement      decimal.Decimal `json:"net_movement"`
	TotalBags        int             `json:"total_bags"`
}

// ActionBalanceRow is a BalanceRow restricted to a set of actions, with the
// number of contributing events.
type ActionBalanceRow struct {
	Commodity string          `json:"commodity"`
	Variety   string          `json:"variety,omitempty"`
	Credit    decimal.Decimal `json:"credit"`
	Debit     decimal.Decimal `json:"debit"`
	Net       decimal.Decimal `json:"net"`
	Bags      int             `json:"bags"`
	Count     int             `json:"count"`
}
