package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ItemRecord is one stock-keeping unit from a sales-and-stock snapshot.
// Numeric coercion happens once at the ingestion boundary; records are
// immutable during a calculation run.
type ItemRecord struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Spec      string          `json:"spec,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Supplier  string          `json:"supplier"`
	SalesQty  int64           `json:"sales_qty"`
	Stock     int64           `json:"stock"` // may be negative in source data
}

// DisplayName appends the pack size or variant to the item name when present.
func (r ItemRecord) DisplayName() string {
	if r.Spec == "" {
		return r.Name
	}
	return r.Name + " (" + r.Spec + ")"
}

// DepletionDays is the projected number of days until stock reaches zero
// at current sales velocity. +Inf means no measurable demand; it is
// rendered as JSON null rather than breaking serialization.
type DepletionDays float64

// Infinite reports whether the estimate is unbounded.
func (d DepletionDays) Infinite() bool {
	return math.IsInf(float64(d), 1)
}

func (d DepletionDays) MarshalJSON() ([]byte, error) {
	if d.Infinite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *DepletionDays) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DepletionDays(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = DepletionDays(v)
	return nil
}

// OrderResult is an ItemRecord augmented with the calculated
// replenishment fields. Field names are stable so export and
// presentation layers can map them without re-deriving logic.
type OrderResult struct {
	ItemRecord

	RecommendedQty  int64         `json:"recommended_qty"`
	ExcessQty       int64         `json:"excess_qty"`
	Status          Status        `json:"status"`
	DepletionDays   DepletionDays `json:"depletion_days"`
	AppliedSettings string        `json:"applied_settings"`
	AvgDailySales   float64       `json:"avg_daily_sales"`

	// StockRatio is stock divided by sales over the period. Nil when
	// sales are zero; only populated for overstock items.
	StockRatio *float64 `json:"stock_ratio,omitempty"`
}

// RecommendedCost is recommended quantity times unit price.
func (r OrderResult) RecommendedCost() decimal.Decimal {
	return decimal.NewFromInt(r.RecommendedQty).Mul(r.UnitPrice)
}

// ExcessCost is excess quantity times unit price.
func (r OrderResult) ExcessCost() decimal.Decimal {
	return decimal.NewFromInt(r.ExcessQty).Mul(r.UnitPrice)
}

// Period is an inclusive analysis date range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the inclusive day count, or 0 when the range is inverted.
func (p Period) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// OrderSummary aggregates the order-needed subset.
type OrderSummary struct {
	ItemCount int             `json:"item_count"`
	TotalQty  int64           `json:"total_qty"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// OverstockSummary aggregates the overstock subset.
type OverstockSummary struct {
	ItemCount  int             `json:"item_count"`
	ExcessQty  int64           `json:"excess_qty"`
	ExcessCost decimal.Decimal `json:"excess_cost"`
}

// RunSummary carries the six dashboard metrics for one calculation run.
type RunSummary struct {
	Order     OrderSummary     `json:"order"`
	Overstock OverstockSummary `json:"overstock"`
}
