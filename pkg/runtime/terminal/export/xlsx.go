package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook writes one sheet per non-empty table of the report. A report
// without tables gets a single "Report" sheet stating why.
func WriteWorkbook(w io.Writer, report *domain.ParsedReport) error {
	f := excelize.NewFile()
	defer f.Close()

	tables := NamedTables(report)
	first := "Report"
	if len(tables) > 0 {
		first = tables[0].Title
	}
	if err := f.SetSheetName("Sheet1", first); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if len(tables) == 0 {
		status := "No data found in report."
		if !report.Result.Supported {
			status = fmt.Sprintf("Report format %q is not supported.", report.ReportFormat)
		}
		if err := f.SetSheetRow(first, "A1", &[]interface{}{report.Name}); err != nil {
			return err
		}
		if err := f.SetSheetRow(first, "A2", &[]interface{}{status}); err != nil {
			return err
		}
		return f.Write(w)
	}

	for i, nt := range tables {
		if i > 0 {
			if _, err := f.NewSheet(nt.Title); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", nt.Title, err)
			}
		}
		if err := writeSheet(f, nt.Title, nt.Table); err != nil {
			return fmt.Errorf("failed to fill sheet %s: %w", nt.Title, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, table *domain.Table) error {
	header := make([]interface{}, 0, len(table.Columns))
	for _, col := range table.Columns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := range table.Rows {
		row := make([]interface{}, 0, len(table.Columns))
		for _, col := range table.Columns {
			row = append(row, cellValue(table.Cell(i, col)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellValue keeps numbers numeric so they stay summable in Excel.
func cellValue(v any) interface{} {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Float64(); err == nil {
			return n
		}
		return val.String()
	case float64, int, bool, string:
		return val
	default:
		return domain.FormatValue(val)
	}
}
