package domain

import (
	"fmt"
	"strings"
)

// Format is the layout of a Salesforce report. Anything the parser has no
// handler for is FormatUnsupported.
type Format int

const (
	FormatUnsupported Format = iota
	FormatTabular
	FormatSummary
	FormatMatrix
)

var formatNames = map[Format]string{
	FormatUnsupported: "UNSUPPORTED",
	FormatTabular:     "TABULAR",
	FormatSummary:     "SUMMARY",
	FormatMatrix:      "MATRIX",
}

// ParseFormat maps reportMetadata.reportFormat onto a Format. The match is exact,
// as the API always sends upper case.
func ParseFormat(s string) Format {
	switch s {
	case "TABULAR":
		return FormatTabular
	case "SUMMARY":
		return FormatSummary
	case "MATRIX":
		return FormatMatrix
	default:
		return FormatUnsupported
	}
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnsupported]
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// CellField selects which field of a data cell is displayed. Both are in use:
// value keeps raw numbers, label carries the formatted text Salesforce shows.
type CellField int

const (
	CellValue CellField = iota
	CellLabel
)

func ParseCellField(s string) (CellField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "value":
		return CellValue, nil
	case "label":
		return CellLabel, nil
	default:
		return CellValue, fmt.Errorf("unknown cell field %q (expected value or label)", s)
	}
}

func (c CellField) String() string {
	if c == CellLabel {
		return "label"
	}
	return "value"
}
