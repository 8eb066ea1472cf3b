package adapters

import (
	"encoding/json"
	"testing"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapParsedReportDomainToApi(t *testing.T) {
	report := &domain.ParsedReport{
		ID:   "00O1",
		Name: "Pipeline",
		Result: domain.ParseResult{
			Format:    domain.FormatSummary,
			Supported: true,
			Status:    domain.StatusOK,
			Summary: &domain.Table{
				Columns: []string{"Grouping", "Aggregates"},
				Rows: []domain.Row{{
					"Grouping": "0",
					"Aggregates": domain.NamedAggregates{
						{Name: "s!AMOUNT", Value: json.Number("10")},
						{Name: "RowCount", Value: json.Number("1")},
					},
				}},
			},
		},
		Groups: []domain.Group{{Name: "0", Aggregates: domain.Aggregates{Values: []any{json.Number("10")}}}},
	}

	res := MapParsedReportDomainToApi(report)

	assert.Equal(t, "SUMMARY", res.Format)
	assert.Equal(t, "ok", res.Status)
	assert.Nil(t, res.Detail)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "10", res.Groups[0].Aggregates)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Aggregates":{"s!AMOUNT":10,"RowCount":1}`)
	assert.NotContains(t, string(raw), `"detail"`)
}

func TestMapParsedReportDomainToApi_Unsupported(t *testing.T) {
	res := MapParsedReportDomainToApi(&domain.ParsedReport{
		Name:         "Joined",
		ReportFormat: "MULTI_BLOCK",
		Result:       domain.ParseResult{Status: domain.StatusUnsupported},
	})

	assert.False(t, res.Supported)
	assert.Equal(t, "MULTI_BLOCK", res.Format)
	assert.Equal(t, "unsupported", res.Status)
}

func TestMapProfileDomainToApi(t *testing.T) {
	res := MapProfileDomainToApi(domain.Profile{Name: "prod", InstanceURL: "https://x", AccessToken: "secret", APIVersion: "60.0"})

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}
