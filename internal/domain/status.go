package domain

// Status classifies one item's replenishment state after a calculation run.
type Status string

const (
	// StatusOrderUrgent means current stock is below the final
	// recommended quantity.
	StatusOrderUrgent Status = "order-urgent"
	// StatusOrderNeeded means a replenishment order is recommended.
	StatusOrderNeeded Status = "order-needed"
	// StatusStockSufficient means no order is needed.
	StatusStockSufficient Status = "stock-sufficient"
	// StatusOverstock means current stock exceeds twice the reorder point.
	StatusOverstock Status = "overstock"
	// StatusOverstockCritical marks the worse half of the overstock
	// subset by stock-to-sales ratio.
	StatusOverstockCritical Status = "overstock-critical"
	// StatusPeriodInvalid marks every row of a run with a non-positive
	// analysis period.
	StatusPeriodInvalid Status = "period-invalid"
)

var statusLabels = map[Status]string{
	StatusOrderUrgent:       "납품 필요 (긴급)",
	StatusOrderNeeded:       "납품 필요",
	StatusStockSufficient:   "재고 충분",
	StatusOverstock:         "초과재고",
	StatusOverstockCritical: "악성 초과재고",
	StatusPeriodInvalid:     "기간 1일 이상",
}

// Label returns the human-readable report label for a status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// NeedsOrder reports whether the status carries a positive recommendation.
func (s Status) NeedsOrder() bool {
	return s == StatusOrderNeeded || s == StatusOrderUrgent
}

// IsOverstock reports whether the status belongs to the overstock report.
func (s Status) IsOverstock() bool {
	return s == StatusOverstock || s == StatusOverstockCritical
}
