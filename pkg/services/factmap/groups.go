package factmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
)

// Groups returns every section as its own group, keyed by the section key
// without its "!T" suffix. Rows are labelled with detailColumns like detail rows.
func Groups(fm *store.FactMap, detailColumns []string, opts Options) []domain.Group {
	groups := make([]domain.Group, 0, fm.Len())
	fm.Each(func(key string, section store.Section) {
		rows := &domain.Table{}
		appendDetailRows(rows, detailColumns, section.Rows, opts.CellField)
		groups = append(groups, domain.Group{
			Name:       strings.TrimSuffix(key, totalSuffix),
			Aggregates: aggregatesOf(section, opts.AggregateNames),
			Rows:       nonEmpty(rows),
		})
	})
	return groups
}

// SectionAggregates builds one row per section that has aggregates, with a
// column per aggregate position. Columns are the union over all sections,
// sorted; a section without a given column gets MissingColumn.
func SectionAggregates(fm *store.FactMap, opts Options) *domain.Table {
	var rows []domain.Row
	headers := make(map[string]struct{})

	fm.Each(func(key string, section store.Section) {
		if len(section.Aggregates) == 0 {
			return
		}
		row := domain.Row{domain.ColumnSection: key}
		for i, agg := range section.Aggregates {
			name := aggregateColumnName(i, opts.AggregateNames)
			row[name] = aggregateContent(agg, opts.CellField)
			headers[name] = struct{}{}
		}
		rows = append(rows, row)
	})

	if len(rows) == 0 {
		return nil
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, row := range rows {
		for _, name := range names {
			if _, ok := row[name]; !ok {
				row[name] = domain.MissingColumn
			}
		}
	}

	return &domain.Table{
		Columns: append([]string{domain.ColumnSection}, names...),
		Rows:    rows,
	}
}

func aggregateColumnName(i int, names []string) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("Aggregate %d", i+1)
}
