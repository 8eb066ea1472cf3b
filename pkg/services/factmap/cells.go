package factmap

import (
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
)

// cellContent is the single place a data cell is defaulted.
func cellContent(cell store.DataCell, field domain.CellField) any {
	v := cell.Value
	if field == domain.CellLabel {
		v = cell.Label
	}
	if v == nil {
		return domain.MissingCell
	}
	return v
}

// aggregateContent is the single place an aggregate is defaulted.
func aggregateContent(agg store.AggregateValue, field domain.CellField) any {
	v := agg.Value
	if field == domain.CellLabel {
		v = agg.Label
	}
	if v == nil {
		return domain.MissingAggregate
	}
	return v
}

// aggregatesOf reads the value of every aggregate regardless of
// Options.CellField, so summary totals stay numeric.
func aggregatesOf(section store.Section, names []string) domain.Aggregates {
	values := make([]any, 0, len(section.Aggregates))
	for _, agg := range section.Aggregates {
		values = append(values, aggregateContent(agg, domain.CellValue))
	}
	return domain.Aggregates{Values: values, Names: names}
}

// appendDetailRows zips detail columns with each row's cells; whichever is
// shorter wins and the rest is dropped.
func appendDetailRows(t *domain.Table, columns []string, rows []store.DataRow, field domain.CellField) {
	for _, row := range rows {
		n := min(len(columns), len(row.DataCells))
		out := make(domain.Row, n)
		for i := 0; i < n; i++ {
			out[columns[i]] = cellContent(row.DataCells[i], field)
		}
		if n > len(t.Columns) {
			t.Columns = append([]string(nil), columns[:n]...)
		}
		t.Rows = append(t.Rows, out)
	}
}
