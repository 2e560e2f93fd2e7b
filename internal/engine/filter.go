package engine

import (
	"strings"

	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/settings"
)

// DefaultExcludeKeywords drops pseudo-items that show up in sales
// snapshots but are not orderable stock. Configurable; the filter
// itself hardcodes nothing.
var DefaultExcludeKeywords = []string{"배송비", "첫 주문", "쿠폰", "개인결제", "마일리지"}

// FilterResult carries the kept rows plus both exclusion counts.
// Kept + ExcludedByKeyword + ExcludedByMinSales always equals the
// original row count.
type FilterResult struct {
	Kept               []domain.ItemRecord `json:"-"`
	ExcludedByKeyword  int                 `json:"excluded_by_keyword"`
	ExcludedByMinSales int                 `json:"excluded_by_min_sales"`
}

// Filter excludes rows in two passes: first any item whose name
// contains one of the keywords (case-sensitive substring match), then
// any remaining item whose sales fall below its resolved minimum-sales
// threshold.
func Filter(items []domain.ItemRecord, resolver settings.Resolver, keywords []string) FilterResult {
	result := FilterResult{Kept: make([]domain.ItemRecord, 0, len(items))}

	for _, item := range items {
		if matchesAny(item.Name, keywords) {
			result.ExcludedByKeyword++
			continue
		}
		if item.SalesQty < int64(resolver.ResolveMinSales(item.Code, item.Supplier)) {
			result.ExcludedByMinSales++
			continue
		}
		result.Kept = append(result.Kept, item)
	}

	return result
}

func matchesAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
