package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.ParsedReport {
	return &domain.ParsedReport{
		Name:         "Pipeline",
		ReportFormat: "SUMMARY",
		Result: domain.ParseResult{
			Format:    domain.FormatSummary,
			Supported: true,
			Status:    domain.StatusOK,
			Detail: &domain.Table{
				Columns: []string{"Name", "Amount"},
				Rows: []domain.Row{
					{"Name": "Acme", "Amount": json.Number("100")},
					{"Name": "Globex"},
				},
			},
			Summary: &domain.Table{
				Columns: []string{"Grouping", "Aggregates"},
				Rows:    []domain.Row{{"Grouping": "0", "Aggregates": "100, 1"}},
			},
		},
		Groups: []domain.Group{
			{Name: "0", Aggregates: domain.Aggregates{Values: []any{json.Number("100"), json.Number("1")}}},
			{Name: "1", Aggregates: domain.Aggregates{Values: []any{"n/a"}}},
			{Name: "T", Aggregates: domain.Aggregates{Values: []any{2.5, domain.MissingAggregate}}},
		},
	}
}

func TestReporter_Tables(t *testing.T) {
	var buf bytes.Buffer

	err := NewReporter(&buf).Handle(sampleReport())

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Pipeline [SUMMARY]")
	assert.Contains(t, out, "=== Detail ===")
	assert.Contains(t, out, "=== Summary ===")
	assert.NotContains(t, out, "=== Sections ===")
	assert.Contains(t, out, "| Name   | Amount |")
	assert.Contains(t, out, "| Acme   | 100    |")
	assert.Contains(t, out, "| Globex | -      |")
	assert.Contains(t, out, "+--------+--------+")
}

func TestReporter_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		result   domain.ParseResult
		expected string
	}{
		{
			name:     "unsupported",
			result:   domain.ParseResult{Status: domain.StatusUnsupported},
			expected: `Report format "JOINED" is not supported`,
		},
		{
			name:     "no data",
			result:   domain.ParseResult{Format: domain.FormatTabular, Supported: true, Status: domain.StatusNoData},
			expected: "No data found in report.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewReporter(&buf).Handle(&domain.ParsedReport{Name: "X", ReportFormat: "JOINED", Result: tt.result})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestReporter_Truncates(t *testing.T) {
	r := NewReporter(&bytes.Buffer{})
	long := strings.Repeat("x", 100)

	assert.Equal(t, 40, len([]rune(r.truncate(long))))
	assert.Equal(t, "short", r.truncate("short"))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteWorkbook(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Detail", "Summary"}, f.GetSheetList())
	rows, err := f.GetRows("Detail")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Amount"}, {"Acme", "100"}, {"Globex", "-"}}, rows)

	rows, err = f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "100, 1"}, rows[1])
}

func TestWriteWorkbook_NoTables(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.ParsedReport{Name: "Empty", Result: domain.ParseResult{Supported: true, Status: domain.StatusNoData}}

	require.NoError(t, WriteWorkbook(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Empty"}, {"No data found in report."}}, rows)
}

func TestGroupTotals(t *testing.T) {
	totals := GroupTotals(sampleReport())

	assert.Equal(t, []GroupTotal{{Name: "0", Total: 101}, {Name: "T", Total: 2.5}}, totals)
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderChart(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "echarts")
	assert.Contains(t, buf.String(), "Pipeline")

	err := RenderChart(&bytes.Buffer{}, &domain.ParsedReport{Name: "Empty"})
	assert.ErrorIs(t, err, ErrNothingToChart)
}
