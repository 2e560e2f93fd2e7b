// Package ingest reads sales-and-stock snapshots and supplier settings
// workbooks into typed records. All numeric coercion happens here, once,
// so the calculation engine never sees raw cell text.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/lpiteam/autoorder/internal/domain"
)

// Snapshot column headers as exported by the upstream sales system.
const (
	ColItemCode  = "상품코드"
	ColItemName  = "상품명"
	ColSpec      = "규격"
	ColBarcode   = "바코드"
	ColUnitPrice = "현구매단가"
	ColSupplier  = "매입처"
	ColSales     = "매출수량"
	ColStock     = "현재고"
)

// DefaultSnapshotPattern matches the upstream export naming scheme,
// e.g. 현황20250626_123028.xlsx.
const DefaultSnapshotPattern = "현황*.xlsx"

var requiredColumns = []string{ColItemCode, ColItemName, ColUnitPrice, ColSupplier, ColSales, ColStock}

// MissingColumnsError reports the exact set of required snapshot
// columns that were absent. Schema problems are fatal to a run; there
// is no partial calculation over an incomplete schema.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("snapshot is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ReadSnapshotFile reads item rows from the first sheet of an xlsx file.
func ReadSnapshotFile(path string) ([]domain.ItemRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()

	return readSnapshot(f)
}

// ReadSnapshot reads item rows from an in-memory xlsx stream, e.g. an
// HTTP upload.
func ReadSnapshot(r io.Reader) ([]domain.ItemRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot stream: %w", err)
	}
	defer f.Close()

	return readSnapshot(f)
}

func readSnapshot(f *excelize.File) ([]domain.ItemRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("snapshot workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, &MissingColumnsError{Columns: requiredColumns}
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var items []domain.ItemRecord
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot row: %w", err)
		}

		cell := func(name string) string {
			idx, ok := colMap[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		code := cell(ColItemCode)
		if code == "" {
			continue
		}

		items = append(items, domain.ItemRecord{
			Code:      code,
			Name:      cell(ColItemName),
			Spec:      cell(ColSpec),
			Barcode:   cell(ColBarcode),
			UnitPrice: coerceDecimal(cell(ColUnitPrice)),
			Supplier:  cell(ColSupplier),
			SalesQty:  coerceInt(cell(ColSales)),
			Stock:     coerceInt(cell(ColStock)),
		})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return items, nil
}

// coerceInt parses a cell as an integer quantity. Exports sometimes
// carry thousands separators or float formatting; anything unparseable
// becomes 0 rather than failing the run.
func coerceInt(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(v)
	}
	return 0
}

func coerceDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "₩")
	if s == "" {
		return decimal.Zero
	}
	if v, err := decimal.NewFromString(s); err == nil {
		return v
	}
	return decimal.Zero
}

// FindLatestSnapshot returns the newest file in dir matching the glob
// pattern, by modification time.
func FindLatestSnapshot(dir, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultSnapshotPattern
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("bad snapshot pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no snapshot matching %q in %s", pattern, dir)
	}

	latest := ""
	var latestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().UnixNano() > latestMod {
			latest = m
			latestMod = info.ModTime().UnixNano()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no readable snapshot matching %q in %s", pattern, dir)
	}

	return latest, nil
}
