// Package factmap turns the factMap of a Salesforce report into tables.
//
// Section keys carry the grouping: a "!T" suffix marks a grand total section
// holding only aggregates, and matrix keys have the form "<rowGroup>!<colGroup>".
// Output order always follows the order of the keys in the source document.
package factmap

import (
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
)

const totalSuffix = "!T"

type Options struct {
	// CellField picks the displayed field of each data cell and of the cells
	// in the SectionAggregates table. Summary, matrix and group aggregates
	// always carry the raw value.
	CellField domain.CellField
	// AggregateNames labels aggregate values positionally. When empty,
	// aggregates render as one joined string.
	AggregateNames []string
}

type handler func(fm *store.FactMap, columns []string, opts Options) (detail, summary *domain.Table)

var handlers = map[domain.Format]handler{
	domain.FormatTabular: parseTabular,
	domain.FormatSummary: parseSummary,
	domain.FormatMatrix:  parseMatrix,
}

// Parse converts a fact map into detail and summary tables. It never fails:
// an unknown format comes back as StatusUnsupported and a missing fact map, or
// one with nothing to show, as StatusNoData.
func Parse(fm *store.FactMap, detailColumns []string, format domain.Format, opts Options) domain.ParseResult {
	h, ok := handlers[format]
	if !ok {
		return domain.ParseResult{Format: format, Status: domain.StatusUnsupported}
	}

	result := domain.ParseResult{Format: format, Supported: true, Status: domain.StatusOK}
	if fm == nil {
		result.Status = domain.StatusNoData
		return result
	}

	result.Detail, result.Summary = h(fm, detailColumns, opts)
	if result.Detail == nil && result.Summary == nil {
		result.Status = domain.StatusNoData
	}
	return result
}

// ParseReport parses a decoded report document using its own metadata.
func ParseReport(report *store.ReportResponse, opts Options) domain.ParseResult {
	if report == nil {
		return Parse(nil, nil, domain.FormatUnsupported, opts)
	}
	meta := report.ReportMetadata
	return Parse(report.FactMap, meta.DetailColumns, domain.ParseFormat(meta.ReportFormat), opts)
}

func parseTabular(fm *store.FactMap, columns []string, opts Options) (*domain.Table, *domain.Table) {
	detail := &domain.Table{}
	fm.Each(func(_ string, section store.Section) {
		appendDetailRows(detail, columns, section.Rows, opts.CellField)
	})
	return nonEmpty(detail), nil
}

func parseSummary(fm *store.FactMap, columns []string, opts Options) (*domain.Table, *domain.Table) {
	detail := &domain.Table{}
	summary := &domain.Table{Columns: []string{domain.ColumnGrouping, domain.ColumnAggregates}}

	fm.Each(func(key string, section store.Section) {
		if !strings.HasSuffix(key, totalSuffix) {
			appendDetailRows(detail, columns, section.Rows, opts.CellField)
			return
		}
		summary.Rows = append(summary.Rows, domain.Row{
			domain.ColumnGrouping:   strings.TrimSuffix(key, totalSuffix),
			domain.ColumnAggregates: aggregatesOf(section, opts.AggregateNames).Display(),
		})
	})

	return nonEmpty(detail), nonEmpty(summary)
}

func parseMatrix(fm *store.FactMap, _ []string, opts Options) (*domain.Table, *domain.Table) {
	summary := &domain.Table{
		Columns: []string{domain.ColumnRowGroup, domain.ColumnColumnGroup, domain.ColumnAggregates},
	}

	fm.Each(func(key string, section store.Section) {
		rowGroup, colGroup := splitMatrixKey(key)
		summary.Rows = append(summary.Rows, domain.Row{
			domain.ColumnRowGroup:    rowGroup,
			domain.ColumnColumnGroup: colGroup,
			domain.ColumnAggregates:  aggregatesOf(section, opts.AggregateNames).Display(),
		})
	})

	return nil, nonEmpty(summary)
}

// splitMatrixKey reads "<row>!<col>"; a key without "!" is the row total, column "T".
func splitMatrixKey(key string) (string, string) {
	parts := strings.Split(key, "!")
	if len(parts) < 2 {
		return parts[0], "T"
	}
	return parts[0], parts[1]
}

func nonEmpty(t *domain.Table) *domain.Table {
	if t.Len() == 0 {
		return nil
	}
	return t
}
