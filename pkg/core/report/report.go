// Package report renders the comparison table as downloadable files.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"kpi_extractor/pkg/models"
)

const (
	CSVFilename    = "financial_kpis.csv"
	CSVContentType = "text/csv; charset=utf-8"

	XLSXFilename    = "financial_kpis.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "KPIs"
)

// Header is the fixed column order of the table.
var Header = []string{"Measure", "Estimated", "Actual"}

// CSV renders rows with a header line, UTF-8, "\n" line endings and no index column.
func CSV(rows []models.ComparisonRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Measure, r.Estimated, r.Actual}); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", r.Measure, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX renders rows as a single-sheet workbook. Cells hold the values as text.
func XLSX(rows []models.ComparisonRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet so the workbook has exactly one.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellStr(sheetName, cell, v)
	}

	for i, h := range Header {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", style); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "C", 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for i, r := range rows {
		for j, v := range []string{r.Measure, r.Estimated, r.Actual} {
			if err := write(j+1, i+2, v); err != nil {
				return nil, fmt.Errorf("write row %s: %w", r.Measure, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
