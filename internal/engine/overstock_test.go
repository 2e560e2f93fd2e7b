package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpiteam/autoorder/internal/domain"
)

func overstockItem(code string, stock, sales int64) domain.OrderResult {
	return domain.OrderResult{
		ItemRecord: domain.ItemRecord{Code: code, SalesQty: sales, Stock: stock},
		Status:     domain.StatusOverstock,
	}
}

func TestClassifyOverstock_MedianSplit(t *testing.T) {
	// ratios 1.0, 2.0, 3.0, 4.0 -> median 2.5
	batch := []domain.OrderResult{
		overstockItem("1", 100, 100),
		overstockItem("2", 200, 100),
		overstockItem("3", 300, 100),
		overstockItem("4", 400, 100),
	}

	classified := ClassifyOverstock(batch)
	require.Len(t, classified, 4)
	assert.Equal(t, domain.StatusOverstock, classified[0].Status)
	assert.Equal(t, domain.StatusOverstock, classified[1].Status)
	assert.Equal(t, domain.StatusOverstockCritical, classified[2].Status)
	assert.Equal(t, domain.StatusOverstockCritical, classified[3].Status)

	require.NotNil(t, classified[1].StockRatio)
	assert.InDelta(t, 2.0, *classified[1].StockRatio, 1e-9)
}

func TestClassifyOverstock_MedianItemIsCritical(t *testing.T) {
	// Odd count: the median element itself satisfies ratio >= median.
	batch := []domain.OrderResult{
		overstockItem("1", 100, 100),
		overstockItem("2", 200, 100),
		overstockItem("3", 300, 100),
	}

	classified := ClassifyOverstock(batch)
	assert.Equal(t, domain.StatusOverstock, classified[0].Status)
	assert.Equal(t, domain.StatusOverstockCritical, classified[1].Status)
	assert.Equal(t, domain.StatusOverstockCritical, classified[2].Status)
}

func TestClassifyOverstock_ZeroSalesExcludedFromMedian(t *testing.T) {
	batch := []domain.OrderResult{
		overstockItem("1", 100, 100),
		overstockItem("2", 300, 100),
		overstockItem("3", 500, 0), // no defined ratio
	}

	classified := ClassifyOverstock(batch)
	require.Len(t, classified, 3)

	// median over [1.0, 3.0] is 2.0
	assert.Equal(t, domain.StatusOverstock, classified[0].Status)
	assert.Equal(t, domain.StatusOverstockCritical, classified[1].Status)

	// still reported, ratio unavailable, status untouched
	assert.Nil(t, classified[2].StockRatio)
	assert.Equal(t, domain.StatusOverstock, classified[2].Status)
}

func TestClassifyOverstock_UndefinedMedianSkipsReclassification(t *testing.T) {
	batch := []domain.OrderResult{
		overstockItem("1", 100, 0),
		overstockItem("2", 200, 0),
	}

	classified := ClassifyOverstock(batch)
	for _, r := range classified {
		assert.Equal(t, domain.StatusOverstock, r.Status)
		assert.Nil(t, r.StockRatio)
	}
}

func TestClassifyOverstock_Empty(t *testing.T) {
	assert.Empty(t, ClassifyOverstock(nil))
}

func TestClassifyOverstock_DoesNotMutateInput(t *testing.T) {
	batch := []domain.OrderResult{
		overstockItem("1", 100, 100),
		overstockItem("2", 400, 100),
	}

	_ = ClassifyOverstock(batch)
	assert.Equal(t, domain.StatusOverstock, batch[0].Status)
	assert.Equal(t, domain.StatusOverstock, batch[1].Status)
	assert.Nil(t, batch[0].StockRatio)
}
