package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `{
	"reportMetadata": {"detailColumns": ["NAME", "AMOUNT"]},
	"factMap": {
		"T!T": {
			"rows": [
				{"dataCells": [{"label": "Acme"}, {"label": "$100"}]},
				{"dataCells": [{"label": "Globex"}, {"label": "$200"}]}
			],
			"aggregates": [{"label": "$300", "value": 300}]
		}
	}
}`

func TestToJSONPath(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: ".", expected: "$"},
		{in: "$.a.b", expected: "$.a.b"},
		{in: ".reportMetadata.detailColumns", expected: "$.reportMetadata.detailColumns"},
		{in: `.factMap."15!T"`, expected: "$.factMap['15!T']"},
		{in: `.factMap."15!T".rows[].dataCells[0].label`, expected: "$.factMap['15!T'].rows[*].dataCells[0].label"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToJSONPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{"factMap", `.factMap."15!T`, ".rows[0", `.factMap."it's"`} {
		_, err := ToJSONPath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected []string
	}{
		{
			name:     "detail columns",
			expr:     "$.reportMetadata.detailColumns",
			expected: []string{`["NAME","AMOUNT"]`},
		},
		{
			name:     "nested match is compacted",
			expr:     "$.factMap['T!T'].rows[0]",
			expected: []string{`{"dataCells":[{"label":"Acme"},{"label":"$100"}]}`},
		},
		{
			name:     "labels of the first column",
			expr:     `.factMap."T!T".rows[].dataCells[0].label`,
			expected: []string{`"Acme"`, `"Globex"`},
		},
		{
			name:     "aggregate values",
			expr:     "$.factMap['T!T'].aggregates[0].value",
			expected: []string{`300`},
		},
		{
			name:     "no match",
			expr:     "$.missing",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Evaluate([]byte(report), tt.expr)
			require.NoError(t, err)
			got := make([]string, 0, len(results))
			for _, r := range results {
				got = append(got, string(r))
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_InvalidDocument(t *testing.T) {
	_, err := Evaluate([]byte(`{"a": `), "$.a")
	assert.Error(t, err)
}

func TestSampleSelectorsAreValid(t *testing.T) {
	for _, s := range SampleSelectors {
		_, err := Evaluate([]byte(report), s)
		assert.NoError(t, err, s)
	}
}
