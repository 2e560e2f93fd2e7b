package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lpiteam/autoorder/internal/domain"
)

// Aggregate sums the two subsets into the dashboard metrics. Empty
// subsets produce zeros, never an error.
func Aggregate(orderNeeded, overstock []domain.OrderResult) domain.RunSummary {
	summary := domain.RunSummary{
		Order:     domain.OrderSummary{TotalCost: decimal.Zero},
		Overstock: domain.OverstockSummary{ExcessCost: decimal.Zero},
	}

	for _, r := range orderNeeded {
		summary.Order.ItemCount++
		summary.Order.TotalQty += r.RecommendedQty
		summary.Order.TotalCost = summary.Order.TotalCost.Add(r.RecommendedCost())
	}

	for _, r := range overstock {
		summary.Overstock.ItemCount++
		summary.Overstock.ExcessQty += r.ExcessQty
		summary.Overstock.ExcessCost = summary.Overstock.ExcessCost.Add(r.ExcessCost())
	}

	return summary
}

// TopUrgent returns the most urgent items, largest recommended quantity
// first. ratioPct selects the top share of the urgent subset (e.g. 25
// keeps a quarter, minimum one item when any are urgent).
func TopUrgent(results []domain.OrderResult, ratioPct int) []domain.OrderResult {
	urgent := make([]domain.OrderResult, 0)
	for _, r := range results {
		if r.Status == domain.StatusOrderUrgent {
			urgent = append(urgent, r)
		}
	}
	if len(urgent) == 0 {
		return urgent
	}

	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].RecommendedQty > urgent[j].RecommendedQty
	})

	if ratioPct <= 0 || ratioPct >= 100 {
		return urgent
	}
	n := int(math.Ceil(float64(len(urgent)) * float64(ratioPct) / 100))
	if n < 1 {
		n = 1
	}
	return urgent[:n]
}
