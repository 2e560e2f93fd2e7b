package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lpiteam/autoorder/internal/settings"
)

// Settings workbook column headers, as provided by suppliers.
const (
	ColSettingKind  = "설정구분"
	ColLeadTime     = "리드타임(재발주기간)(일)"
	ColSafetyRate   = "안전재고율(%)"
	ColAdditionRate = "가산율(%)"
	ColOrderUnit    = "발주단위"
	ColMinSales     = "제외매출수량"
)

// Row kind markers in the 설정구분 column.
const (
	kindMasterDefaults = "매입처별 기본값"
	kindItemOverride   = "개별 품목 설정"
)

// ParsedSettings is the target shape of a settings workbook: one
// optional master record plus per-item overrides. Loading a workbook
// replaces all existing overrides.
type ParsedSettings struct {
	Master    *settings.Settings
	Overrides map[string]settings.Patch
}

// ReadSettingsFile parses a supplier settings workbook from disk.
func ReadSettingsFile(path string) (*ParsedSettings, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings workbook %s: %w", path, err)
	}
	defer f.Close()

	return readSettings(f)
}

// ReadSettings parses a supplier settings workbook from a stream.
func ReadSettings(r io.Reader) (*ParsedSettings, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings stream: %w", err)
	}
	defer f.Close()

	return readSettings(f)
}

func readSettings(f *excelize.File) (*ParsedSettings, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("settings workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read settings sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: []string{ColSettingKind}}
	}

	colMap := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colMap[strings.TrimSpace(col)] = i
	}
	if _, ok := colMap[ColSettingKind]; !ok {
		return nil, &MissingColumnsError{Columns: []string{ColSettingKind}}
	}

	parsed := &ParsedSettings{Overrides: make(map[string]settings.Patch)}
	defaults := settings.DefaultMaster()

	for _, record := range rows[1:] {
		cell := func(name string) string {
			idx, ok := colMap[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		switch cell(ColSettingKind) {
		case kindMasterDefaults:
			master := settings.Settings{
				LeadTime:        intOr(cell(ColLeadTime), defaults.LeadTime),
				SafetyStockRate: intOr(cell(ColSafetyRate), defaults.SafetyStockRate),
				AdditionRate:    intOr(cell(ColAdditionRate), defaults.AdditionRate),
				OrderUnit:       intOr(cell(ColOrderUnit), defaults.OrderUnit),
				MinSales:        intOr(cell(ColMinSales), defaults.MinSales),
			}
			parsed.Master = &master

		case kindItemOverride:
			code := cell(ColItemCode)
			if code == "" {
				continue
			}
			parsed.Overrides[code] = settings.Patch{
				LeadTime:        intPtrOr(cell(ColLeadTime), 0),
				SafetyStockRate: intPtrOr(cell(ColSafetyRate), 0),
				AdditionRate:    intPtrOr(cell(ColAdditionRate), 0),
				OrderUnit:       intPtrOr(cell(ColOrderUnit), 1),
				MinSales:        intPtrOr(cell(ColMinSales), 0),
			}
		}
	}

	return parsed, nil
}

func intOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	return int(coerceInt(s))
}

func intPtrOr(s string, fallback int) *int {
	v := fallback
	if s != "" {
		v = int(coerceInt(s))
	}
	return &v
}
