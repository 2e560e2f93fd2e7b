package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/settings"
)

func intPtr(v int) *int { return &v }

func storeWith(master settings.Settings) *settings.Store {
	st := settings.NewStore()
	st.ReplaceMasterDefaults(master)
	return st
}

func TestCalculate_WorkedExample(t *testing.T) {
	// 600 sold over 30 days, 80 on hand, lead 15d, safety 10%, addition 5%, unit 10:
	// avg 20/day, reorder point 330, base 250, adjusted 262.5, final 270.
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, AdditionRate: 5, OrderUnit: 10})
	items := []domain.ItemRecord{{Code: "A001", Name: "Serum", SalesQty: 600, Stock: 80}}

	results := Calculate(items, st.Snapshot(), 30)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, int64(270), r.RecommendedQty)
	// 80 on hand is below the 270 recommendation, so the order is urgent.
	assert.Equal(t, domain.StatusOrderUrgent, r.Status)
	assert.InDelta(t, 20.0, r.AvgDailySales, 1e-9)
	assert.InDelta(t, 4.0, float64(r.DepletionDays), 1e-9)
	assert.Equal(t, "L:15 S:10% A:5% U:10", r.AppliedSettings)
}

func TestCalculate_OrderNeededWhenStockCoversFinalQty(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, AdditionRate: 5, OrderUnit: 10})
	items := []domain.ItemRecord{{Code: "A002", SalesQty: 600, Stock: 200}}

	r := Calculate(items, st.Snapshot(), 30)[0]

	// base 130, adjusted 136.5, final 140; 200 on hand covers it.
	assert.Equal(t, int64(140), r.RecommendedQty)
	assert.Equal(t, domain.StatusOrderNeeded, r.Status)
}

func TestCalculate_Overstock(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, OrderUnit: 10})
	items := []domain.ItemRecord{{Code: "A003", SalesQty: 600, Stock: 800}}

	r := Calculate(items, st.Snapshot(), 30)[0]

	// reorder point 330; 800 > 660 makes it overstock, excess 800-330.
	assert.Equal(t, domain.StatusOverstock, r.Status)
	assert.Equal(t, int64(470), r.ExcessQty)
	assert.Equal(t, int64(0), r.RecommendedQty)
}

func TestCalculate_OverstockBoundaryIsSufficient(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, OrderUnit: 10})
	items := []domain.ItemRecord{{Code: "A004", SalesQty: 600, Stock: 660}}

	r := Calculate(items, st.Snapshot(), 30)[0]

	// Exactly twice the reorder point is not overstock.
	assert.Equal(t, domain.StatusStockSufficient, r.Status)
	assert.Equal(t, int64(0), r.ExcessQty)
}

func TestCalculate_ZeroSalesNeverOverstock(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, OrderUnit: 5})

	for _, stock := range []int64{0, 1, 10_000} {
		r := Calculate([]domain.ItemRecord{{Code: "Z001", SalesQty: 0, Stock: stock}}, st.Snapshot(), 30)[0]

		// No demand baseline, so high stock is sufficient rather than excess.
		assert.Equal(t, domain.StatusStockSufficient, r.Status, "stock=%d", stock)
		assert.Equal(t, int64(0), r.RecommendedQty, "stock=%d", stock)
		assert.Equal(t, int64(0), r.ExcessQty, "stock=%d", stock)
		assert.True(t, r.DepletionDays.Infinite(), "stock=%d", stock)
	}
}

func TestCalculate_NegativeStockOrdersUpToZero(t *testing.T) {
	// Source data can carry negative stock; the shortfall itself becomes
	// the base order quantity even with zero sales.
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, OrderUnit: 5})
	r := Calculate([]domain.ItemRecord{{Code: "N001", SalesQty: 0, Stock: -7}}, st.Snapshot(), 30)[0]

	assert.Equal(t, int64(10), r.RecommendedQty)
	assert.Equal(t, domain.StatusOrderUrgent, r.Status)
	assert.True(t, r.DepletionDays.Infinite())
}

func TestCalculate_InvalidPeriod(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, OrderUnit: 10})
	items := []domain.ItemRecord{{Code: "P001", SalesQty: 600, Stock: 80}}

	for _, days := range []int{0, -3} {
		r := Calculate(items, st.Snapshot(), days)[0]
		assert.Equal(t, domain.StatusPeriodInvalid, r.Status, "days=%d", days)
		assert.Equal(t, int64(0), r.RecommendedQty, "days=%d", days)
		assert.True(t, r.DepletionDays.Infinite(), "days=%d", days)
	}
}

func TestCalculate_OrderUnitCoercion(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, AdditionRate: 5, OrderUnit: 0})
	r := Calculate([]domain.ItemRecord{{Code: "U001", SalesQty: 600, Stock: 80}}, st.Snapshot(), 30)[0]

	// unit 0 coerced to 1: ceil(262.5) = 263
	assert.Equal(t, int64(263), r.RecommendedQty)
	assert.Equal(t, "L:15 S:10% A:5% U:1", r.AppliedSettings)
}

func TestCalculate_FinalQtyAlwaysMultipleOfOrderUnit(t *testing.T) {
	cases := []struct {
		unit  int
		sales int64
		stock int64
	}{
		{3, 100, 5},
		{7, 457, 12},
		{10, 600, 80},
		{12, 89, 0},
		{25, 1234, 300},
	}

	for _, tc := range cases {
		st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, AdditionRate: 7, OrderUnit: tc.unit})
		r := Calculate([]domain.ItemRecord{{Code: "M", SalesQty: tc.sales, Stock: tc.stock}}, st.Snapshot(), 30)[0]

		if r.RecommendedQty > 0 {
			assert.Zero(t, r.RecommendedQty%int64(tc.unit), "unit=%d sales=%d", tc.unit, tc.sales)
		}
	}
}

func TestCalculate_MoreStockNeverRaisesRecommendation(t *testing.T) {
	st := storeWith(settings.Settings{LeadTime: 15, SafetyStockRate: 10, AdditionRate: 5, OrderUnit: 10})

	prev := int64(1 << 40)
	for stock := int64(0); stock <= 400; stock += 20 {
		r := Calculate([]domain.ItemRecord{{Code: "M001", SalesQty: 600, Stock: stock}}, st.Snapshot(), 30)[0]
		assert.LessOrEqual(t, r.RecommendedQty, prev, "stock=%d", stock)
		prev = r.RecommendedQty
	}
}

func TestSplit(t *testing.T) {
	results := []domain.OrderResult{
		{Status: domain.StatusOrderUrgent, RecommendedQty: 50},
		{Status: domain.StatusOrderNeeded, RecommendedQty: 10},
		{Status: domain.StatusStockSufficient},
		{Status: domain.StatusOverstock, ExcessQty: 470},
		{Status: domain.StatusPeriodInvalid},
	}

	orderNeeded, overstock := Split(results)
	assert.Len(t, orderNeeded, 2)
	require.Len(t, overstock, 1)
	assert.Equal(t, int64(470), overstock[0].ExcessQty)
}
