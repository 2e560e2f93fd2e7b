// Package export renders calculation results as xlsx workbooks for the
// order desk. Layout mirrors the dashboard tables: one sheet per
// report, columns auto-sized to their widest cell.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lpiteam/autoorder/internal/domain"
)

const (
	orderSheet     = "OrderList"
	overstockSheet = "Overstock"
)

// OrderListFilename returns the date-stamped default filename for the
// order recommendation workbook.
func OrderListFilename(now time.Time) string {
	return fmt.Sprintf("납품추천결과_%s.xlsx", now.Format("20060102"))
}

// OverstockFilename returns the date-stamped default filename for the
// overstock report workbook.
func OverstockFilename(now time.Time) string {
	return fmt.Sprintf("초과재고현황_%s.xlsx", now.Format("20060102"))
}

// WriteOrderList writes the order-needed subset to path.
func WriteOrderList(path string, results []domain.OrderResult) error {
	header := []interface{}{"상품코드", "상품명 (규격)", "바코드", "현재고", "매출수량", "추천 납품량", "비고", "적용된 설정", "현구매단가", "예상 납품 금액"}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, []interface{}{
			r.Code,
			r.DisplayName(),
			r.Barcode,
			r.Stock,
			r.SalesQty,
			r.RecommendedQty,
			r.Status.Label(),
			r.AppliedSettings,
			r.UnitPrice.String(),
			r.RecommendedCost().String(),
		})
	}

	return writeSheet(path, orderSheet, header, rows)
}

// WriteOverstock writes the reclassified overstock subset to path.
func WriteOverstock(path string, results []domain.OrderResult) error {
	header := []interface{}{"상품코드", "상품명 (규격)", "바코드", "현재고", "초과재고 수량", "매출수량", "재고 소진 예상일", "초과재고 비율 (재고/매출)", "현구매단가", "초과재고 금액", "비고"}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		depletion := ""
		if !r.DepletionDays.Infinite() {
			depletion = fmt.Sprintf("%.0f", float64(r.DepletionDays))
		}
		ratio := ""
		if r.StockRatio != nil {
			ratio = fmt.Sprintf("%.1f 배", *r.StockRatio)
		}

		rows = append(rows, []interface{}{
			r.Code,
			r.DisplayName(),
			r.Barcode,
			r.Stock,
			r.ExcessQty,
			r.SalesQty,
			depletion,
			ratio,
			r.UnitPrice.String(),
			r.ExcessCost().String(),
			r.Status.Label(),
		})
	}

	return writeSheet(path, overstockSheet, header, rows)
}

func writeSheet(path, sheet string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sizeColumns(f, sheet, header, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return nil
}

// sizeColumns widens every column to its longest cell plus padding.
func sizeColumns(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	for col := range header {
		width := cellWidth(header[col])
		for _, row := range rows {
			if col < len(row) {
				if w := cellWidth(row[col]); w > width {
					width = w
				}
			}
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", col+1, err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+2)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}

func cellWidth(v interface{}) int {
	return len([]rune(fmt.Sprintf("%v", v)))
}
