package engine

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/settings"
)

// Calculate derives the replenishment fields for every item. Ceiling
// rounding is used throughout: under-ordering is the failure mode being
// avoided. Per-row numeric anomalies (negative stock, zero sales) never
// abort the run; they land in the status and estimate fields.
func Calculate(items []domain.ItemRecord, resolver settings.Resolver, periodDays int) []domain.OrderResult {
	results := make([]domain.OrderResult, 0, len(items))
	for _, item := range items {
		results = append(results, calculateOne(item, resolver.Resolve(item.Code, item.Supplier), periodDays))
	}
	return results
}

func calculateOne(item domain.ItemRecord, cfg settings.Settings, periodDays int) domain.OrderResult {
	orderUnit := cfg.OrderUnit
	if orderUnit <= 0 {
		// Corrective coercion, not normal resolution; keep it visible.
		log.Warn().Str("code", item.Code).Int("order_unit", cfg.OrderUnit).
			Msg("non-positive order unit coerced to 1")
		orderUnit = 1
		cfg.OrderUnit = 1
	}

	result := domain.OrderResult{
		ItemRecord:      item,
		AppliedSettings: cfg.Summary(),
	}

	if periodDays <= 0 {
		result.Status = domain.StatusPeriodInvalid
		result.DepletionDays = domain.DepletionDays(math.Inf(1))
		return result
	}

	avgDailySales := float64(item.SalesQty) / float64(periodDays)
	salesDuringLeadTime := avgDailySales * float64(cfg.LeadTime)
	safetyStock := salesDuringLeadTime * float64(cfg.SafetyStockRate) / 100
	reorderPoint := salesDuringLeadTime + safetyStock
	baseOrderQty := reorderPoint - float64(item.Stock)

	result.AvgDailySales = avgDailySales

	if baseOrderQty <= 0 {
		// A zero-demand item is never overstock: without a positive
		// reorder point there is no baseline to call the stock excessive.
		if float64(item.Stock) > reorderPoint*2 && reorderPoint > 0 {
			result.Status = domain.StatusOverstock
			result.ExcessQty = item.Stock - int64(math.Ceil(reorderPoint))
		} else {
			result.Status = domain.StatusStockSufficient
		}
	} else {
		adjustedQty := baseOrderQty * (1 + float64(cfg.AdditionRate)/100)
		finalQty := math.Ceil(adjustedQty/float64(orderUnit)) * float64(orderUnit)
		result.RecommendedQty = int64(finalQty)
		if float64(item.Stock) < finalQty {
			result.Status = domain.StatusOrderUrgent
		} else {
			result.Status = domain.StatusOrderNeeded
		}
	}

	if avgDailySales > 0 {
		result.DepletionDays = domain.DepletionDays(float64(item.Stock) / avgDailySales)
	} else {
		result.DepletionDays = domain.DepletionDays(math.Inf(1))
	}

	return result
}

// Split partitions calculator output into the order-needed and
// overstock subsets consumed by the classifier and aggregator.
func Split(results []domain.OrderResult) (orderNeeded, overstock []domain.OrderResult) {
	for _, r := range results {
		switch {
		case r.RecommendedQty > 0:
			orderNeeded = append(orderNeeded, r)
		case r.Status.IsOverstock():
			overstock = append(overstock, r)
		}
	}
	return orderNeeded, overstock
}
