package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSettings(t *testing.T) {
	src := buildWorkbook(t, [][]interface{}{
		{ColSettingKind, ColItemCode, ColLeadTime, ColSafetyRate, ColAdditionRate, ColOrderUnit, ColMinSales},
		{"매입처별 기본값", "", 20, 12, 5, 10, 3},
		{"개별 품목 설정", "A001", 25, 15, 0, 5, 0},
		{"개별 품목 설정", "A002", 7, 10, 3, 1, 50},
		{"기타 행", "ignored", 1, 1, 1, 1, 1},
	})

	parsed, err := ReadSettings(src)
	require.NoError(t, err)

	require.NotNil(t, parsed.Master)
	assert.Equal(t, 20, parsed.Master.LeadTime)
	assert.Equal(t, 12, parsed.Master.SafetyStockRate)
	assert.Equal(t, 5, parsed.Master.AdditionRate)
	assert.Equal(t, 10, parsed.Master.OrderUnit)
	assert.Equal(t, 3, parsed.Master.MinSales)

	require.Len(t, parsed.Overrides, 2)
	a1 := parsed.Overrides["A001"]
	require.NotNil(t, a1.LeadTime)
	assert.Equal(t, 25, *a1.LeadTime)
	require.NotNil(t, a1.MinSales)
	assert.Equal(t, 0, *a1.MinSales)

	a2 := parsed.Overrides["A002"]
	require.NotNil(t, a2.MinSales)
	assert.Equal(t, 50, *a2.MinSales)
}

func TestReadSettings_MasterDefaultsFillBlanks(t *testing.T) {
	src := buildWorkbook(t, [][]interface{}{
		{ColSettingKind, ColItemCode, ColLeadTime},
		{"매입처별 기본값", "", 30},
	})

	parsed, err := ReadSettings(src)
	require.NoError(t, err)
	require.NotNil(t, parsed.Master)

	assert.Equal(t, 30, parsed.Master.LeadTime)
	// absent columns fall back to the shipped defaults
	assert.Equal(t, 10, parsed.Master.SafetyStockRate)
	assert.Equal(t, 5, parsed.Master.OrderUnit)
}

func TestReadSettings_NoMasterRow(t *testing.T) {
	src := buildWorkbook(t, [][]interface{}{
		{ColSettingKind, ColItemCode, ColLeadTime, ColOrderUnit},
		{"개별 품목 설정", "A001", 25, 5},
	})

	parsed, err := ReadSettings(src)
	require.NoError(t, err)
	assert.Nil(t, parsed.Master)
	assert.Len(t, parsed.Overrides, 1)
}

func TestReadSettings_MissingKindColumn(t *testing.T) {
	src := buildWorkbook(t, [][]interface{}{
		{ColItemCode, ColLeadTime},
		{"A001", 25},
	})

	_, err := ReadSettings(src)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{ColSettingKind}, missing.Columns)
}
