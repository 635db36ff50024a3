package dto

import "github.com/shopspring/decimal"

// ListEventsRequest query parameters for the raw ledger listing.
type ListEventsRequest struct {
	PageRequest
	Commodity string `query:"commodity"`
	Variety   string `query:"variety"`
	From      string `query:"from"`
	To        string `query:"to"`
	Search    string `query:"q"`
	Sort      string `query:"sort"`
}

// StockEventResponse wire shape of a ledger event.
type StockEventResponse struct {
	ID         string          `json:"id"`
	EventDate  string          `json:"event_date"`
	Commodity  string          `json:"commodity"`
	Variety    string          `json:"variety,omitempty"`
	Direction  string          `json:"direction"`
	Action     string          `json:"action"`
	Quantity   decimal.Decimal `json:"quantity"`
	BagCount   int             `json:"bag_count"`
	SourceKind string          `json:"source_kind"`
	SourceID   string          `json:"source_id"`
	Note       string          `json:"note,omitempty"`
	RecordedBy string          `json:"recorded_by,omitempty"`
	CreatedAt  string          `json:"created_at"`
}
