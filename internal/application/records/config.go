// Package records implements one generic commodity record service that
// replaces the historical copy-paste of near-identical per-kind CRUD modules.
// Each transaction kind is a row of configuration, not a hand-written service.
package records

import "github.com/millbooks/millbooks-api/internal/domain/entity"

// KindConfig declares one transaction kind: its storage table, the ledger
// direction of its stock effect, where the commodity comes from, and the
// document-number prefix (empty = the kind carries no document number).
type KindConfig struct {
	Kind      string // source kind name, also the sequence key
	Table     string // per-kind storage table
	Path      string // URL path segment
	Prefix    string // document number prefix; "" = no number assigned
	Direction string // entity.DirectionCredit or entity.DirectionDebit
	Action    string // free-form ledger action label
	// Commodity fixes the commodity for the kind. When empty the commodity is
	// taken from the payload ("other goods" kinds).
	Commodity  string
	HasVariety bool
}

// CommodityFromPayload reports whether the kind reads its commodity from the
// request payload instead of the configuration.
func (c KindConfig) CommodityFromPayload() bool { return c.Commodity == "" }

// Kinds is the full configuration table. Every quantity field maps the
// payload's total quantity to the stock event; per-variety sub-quantities stay
// on the source record only.
func Kinds() []KindConfig {
	return []KindConfig{
		{Kind: "paddy_purchase", Table: "paddy_purchases", Path: "paddy-purchases", Prefix: "PDP", Direction: entity.DirectionCredit, Action: "Purchase", Commodity: "Paddy", HasVariety: true},
		{Kind: "paddy_inward", Table: "paddy_inwards", Path: "paddy-inwards", Prefix: "PDI", Direction: entity.DirectionCredit, Action: "Inward", Commodity: "Paddy", HasVariety: true},
		{Kind: "rice_sale", Table: "rice_sales", Path: "rice-sales", Prefix: "RCS", Direction: entity.DirectionDebit, Action: "Sale", Commodity: "Rice", HasVariety: true},
		{Kind: "rice_outward", Table: "rice_outwards", Path: "rice-outwards", Prefix: "RCO", Direction: entity.DirectionDebit, Action: "Outward", Commodity: "Rice", HasVariety: true},
		{Kind: "frk_purchase", Table: "frk_purchases", Path: "frk-purchases", Prefix: "FRP", Direction: entity.DirectionCredit, Action: "Purchase", Commodity: "FRK"},
		{Kind: "frk_outward", Table: "frk_outwards", Path: "frk-outwards", Prefix: "FRO", Direction: entity.DirectionDebit, Action: "Outward", Commodity: "FRK"},
		{Kind: "gunny_inward", Table: "gunny_inwards", Path: "gunny-inwards", Prefix: "GNI", Direction: entity.DirectionCredit, Action: "Inward", Commodity: "Gunny"},
		{Kind: "gunny_outward", Table: "gunny_outwards", Path: "gunny-outwards", Prefix: "GNO", Direction: entity.DirectionDebit, Action: "Outward", Commodity: "Gunny"},
		{Kind: "khanda_sale", Table: "khanda_sales", Path: "khanda-sales", Prefix: "KHS", Direction: entity.DirectionDebit, Action: "Sale", Commodity: "Khanda"},
		{Kind: "nakkhi_sale", Table: "nakkhi_sales", Path: "nakkhi-sales", Prefix: "NKS", Direction: entity.DirectionDebit, Action: "Sale", Commodity: "Nakkhi"},
		{Kind: "other_purchase", Table: "other_purchases", Path: "other-purchases", Prefix: "OTP", Direction: entity.DirectionCredit, Action: "Purchase"},
		{Kind: "other_sale", Table: "other_sales", Path: "other-sales", Prefix: "OTS", Direction: entity.DirectionDebit, Action: "Sale"},
	}
}
