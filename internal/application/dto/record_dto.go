package dto

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for business dates.
const DateLayout = "2006-01-02"

// CreateRecordRequest payload to create a source record. Commodity is only
// honored for kinds configured to take it from the payload.
type CreateRecordRequest struct {
	Date          string          `json:"date" validate:"required"`
	PartyName     string          `json:"party_name" validate:"required,max=120"`
	BrokerName    string          `json:"broker_name" validate:"max=120"`
	VehicleNumber string          `json:"vehicle_number" validate:"max=40"`
	Commodity     string          `json:"commodity" validate:"max=60"`
	Variety       string          `json:"variety" validate:"max=60"`
	Quantity      decimal.Decimal `json:"quantity"`
	BagCount      int             `json:"bag_count" validate:"min=0"`
	Rate          decimal.Decimal `json:"rate"`
	Notes         string          `json:"notes" validate:"max=500"`
}

// UpdateRecordRequest partial update. Nil fields are left untouched; the
// document number is never updatable.
type UpdateRecordRequest struct {
	Date          *string          `json:"date"`
	PartyName     *string          `json:"party_name" validate:"omitempty,max=120"`
	BrokerName    *string          `json:"broker_name" validate:"omitempty,max=120"`
	VehicleNumber *string          `json:"vehicle_number" validate:"omitempty,max=40"`
	Variety       *string          `json:"variety" validate:"omitempty,max=60"`
	Quantity      *decimal.Decimal `json:"quantity"`
	BagCount      *int             `json:"bag_count" validate:"omitempty,min=0"`
	Rate          *decimal.Decimal `json:"rate"`
	Notes         *string          `json:"notes" validate:"omitempty,max=500"`
}

// ListRecordsRequest query parameters for listings.
type ListRecordsRequest struct {
	PageRequest
	From   string `query:"from"`
	To     string `query:"to"`
	Search string `query:"q"`
	Sort   string `query:"sort"` // "date", "-date", "created", "-created"
}

// BulkDeleteRequest ids to delete. Unmatched ids are silently skipped.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// RecordResponse wire shape of a source record.
type RecordResponse struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	PartyName     string          `json:"party_name"`
	BrokerName    string          `json:"broker_name,omitempty"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
	Commodity     string          `json:"commodity"`
	Variety       string          `json:"variety,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	BagCount      int             `json:"bag_count"`
	Rate          decimal.Decimal `json:"rate"`
	Notes         string          `json:"notes,omitempty"`
	DocNumber     string          `json:"doc_number,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}
