package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

type TableConfig struct {
	// MaxCellWidth truncates longer cell text.
	MaxCellWidth int
	MinCellWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxCellWidth: 40,
		MinCellWidth: 6,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type tableView struct {
	Title   string
	Columns []string
	Rows    [][]string
	Widths  []int
}

type reportView struct {
	Name         string
	Format       string
	ReportFormat string
	Supported    bool
	NoData       bool
	Tables       []tableView
}

const reportTemplate = `
{{.Name}} [{{.Format}}]
{{if not .Supported}}
Report format {{printf "%q" .ReportFormat}} is not supported; nothing to show.
{{else if .NoData}}
No data found in report.
{{else}}{{range $t := .Tables}}
=== {{$t.Title}} ===
{{separator $t}}
{{formatRow $t $t.Columns}}
{{separator $t}}
{{range $t.Rows}}{{formatRow $t .}}
{{end}}{{separator $t}}
{{end}}{{end}}`

// Handle prints the parsed report as fixed width text tables.
func (c *Reporter) Handle(report *domain.ParsedReport) error {
	funcMap := template.FuncMap{
		"formatRow": func(t tableView, cells []string) string {
			var b strings.Builder
			b.WriteString("|")
			for i, w := range t.Widths {
				cell := ""
				if i < len(cells) {
					cell = cells[i]
				}
				fmt.Fprintf(&b, " %s%s |", cell, strings.Repeat(" ", w-utf8.RuneCountInString(cell)))
			}
			return b.String()
		},
		"separator": func(t tableView) string {
			var b strings.Builder
			b.WriteString("+")
			for _, w := range t.Widths {
				b.WriteString(strings.Repeat("-", w+2))
				b.WriteString("+")
			}
			return b.String()
		},
	}

	t, err := template.New("report").Funcs(funcMap).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, c.view(report))
}

func (c *Reporter) view(report *domain.ParsedReport) reportView {
	v := reportView{
		Name:         report.Name,
		Format:       report.Result.Format.String(),
		ReportFormat: report.ReportFormat,
		Supported:    report.Result.Supported,
		NoData:       report.Result.Status == domain.StatusNoData,
	}
	for _, nt := range NamedTables(report) {
		v.Tables = append(v.Tables, c.tableView(nt.Title, nt.Table))
	}
	return v
}

func (c *Reporter) tableView(title string, table *domain.Table) tableView {
	tv := tableView{
		Title:   title,
		Columns: make([]string, len(table.Columns)),
		Widths:  make([]int, len(table.Columns)),
	}
	for i, col := range table.Columns {
		tv.Columns[i] = c.truncate(col)
		tv.Widths[i] = max(c.config.MinCellWidth, utf8.RuneCountInString(tv.Columns[i]))
	}

	for i := range table.Rows {
		cells := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = c.truncate(domain.FormatValue(table.Cell(i, col)))
			tv.Widths[j] = max(tv.Widths[j], utf8.RuneCountInString(cells[j]))
		}
		tv.Rows = append(tv.Rows, cells)
	}

	return tv
}

func (c *Reporter) truncate(s string) string {
	if utf8.RuneCountInString(s) <= c.config.MaxCellWidth {
		return s
	}
	r := []rune(s)
	return string(r[:c.config.MaxCellWidth-1]) + "…"
}

type NamedTable struct {
	Title string
	Table *domain.Table
}

// NamedTables lists the non-empty tables of a report in display order.
func NamedTables(report *domain.ParsedReport) []NamedTable {
	var tables []NamedTable
	for _, nt := range []NamedTable{
		{Title: "Detail", Table: report.Result.Detail},
		{Title: "Summary", Table: report.Result.Summary},
		{Title: "Sections", Table: report.Sections},
	} {
		if nt.Table.Len() > 0 {
			tables = append(tables, nt)
		}
	}
	return tables
}
