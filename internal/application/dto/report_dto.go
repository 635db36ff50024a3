package dto

import "github.com/millbooks/millbooks-api/internal/domain/entity"

// BalanceRequest query parameters for balance reports.
type BalanceRequest struct {
	Commodity string `query:"commodity"`
	Variety   string `query:"variety"`
	AsOf      string `query:"as_of"`
}

// SummaryRequest query parameters for windowed summaries.
type SummaryRequest struct {
	From      string `query:"from"`
	To        string `query:"to"`
	Commodity string `query:"commodity"`
	Variety   string `query:"variety"`
}

// DailyReportRequest query parameters for the daily action report.
type DailyReportRequest struct {
	Date    string `query:"date"`
	Actions string `query:"actions"` // comma-joined, logical OR
}

// CommodityPositionResponse balance rows plus the movement summary for one
// commodity.
type CommodityPositionResponse struct {
	Commodity string               `json:"commodity"`
	AsOf      string               `json:"as_of,omitempty"`
	Rows      []entity.BalanceRow  `json:"rows"`
	Summary   entity.LedgerSummary `json:"summary"`
}
