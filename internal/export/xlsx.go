package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
)

// PreviewSheet is the worksheet name used for exported previews.
const PreviewSheet = "Preview"

// WriteXLSX writes records as a single-sheet workbook to w. Column order follows
// the first record, like ToCSV. Numbers and booleans keep their cell types.
func WriteXLSX(w io.Writer, records []*analysis.Record) error {
	if len(records) == 0 || records[0] == nil {
		return ErrEmptyInput
	}
	header := analysis.Columns(records[0])

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", PreviewSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(PreviewSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil && len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(PreviewSheet, "A1", last, style)
	}

	for r, rec := range records {
		if rec == nil {
			continue
		}
		for c, col := range header {
			v, ok := rec.Get(col)
			if !ok || v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(PreviewSheet, cell, cellValue(v)); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(v any) any {
	switch v.(type) {
	case string, bool, float64, float32, int, int64:
		return v
	default:
		return FormatValue(v)
	}
}
