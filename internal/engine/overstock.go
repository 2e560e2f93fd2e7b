package engine

import (
	"sort"

	"github.com/lpiteam/autoorder/internal/domain"
)

// ClassifyOverstock splits the overstock subset into severity tiers.
// The stock-to-sales ratio of each item is compared against the median
// ratio of the batch: at or above the median is overstock-critical,
// below stays overstock. The split is relative to the batch and must be
// recomputed for every run.
//
// Items with zero sales have no defined ratio; they are excluded from
// the median but still reported with a nil ratio and an unchanged
// status. When the subset is empty or no ratio is defined, everything
// stays overstock.
func ClassifyOverstock(overstock []domain.OrderResult) []domain.OrderResult {
	if len(overstock) == 0 {
		return overstock
	}

	classified := make([]domain.OrderResult, len(overstock))
	copy(classified, overstock)

	ratios := make([]float64, 0, len(classified))
	for i := range classified {
		if classified[i].SalesQty > 0 {
			ratio := float64(classified[i].Stock) / float64(classified[i].SalesQty)
			classified[i].StockRatio = &ratio
			ratios = append(ratios, ratio)
		} else {
			classified[i].StockRatio = nil
		}
	}

	if len(ratios) == 0 {
		return classified
	}

	median := medianOf(ratios)
	for i := range classified {
		if classified[i].StockRatio == nil {
			continue
		}
		if *classified[i].StockRatio >= median {
			classified[i].Status = domain.StatusOverstockCritical
		} else {
			classified[i].Status = domain.StatusOverstock
		}
	}

	return classified
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
