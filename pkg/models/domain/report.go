package domain

import "encoding/json"

type ParseStatus string

const (
	StatusOK          ParseStatus = "ok"
	StatusNoData      ParseStatus = "no_data"
	StatusUnsupported ParseStatus = "unsupported"
)

// ParseResult is the uniform output of the fact map parser. Detail and Summary
// are nil when absent. Callers branch on Supported (or Status), never on the
// format string.
type ParseResult struct {
	Format    Format
	Supported bool
	Status    ParseStatus
	Detail    *Table
	Summary   *Table
}

// Group is one fact map section viewed on its own: its rows plus its aggregates.
type Group struct {
	Name       string
	Aggregates Aggregates
	Rows       *Table
}

// ParsedReport is a report document after parsing, ready for presentation.
type ParsedReport struct {
	ID           string
	Name         string
	// ReportFormat is reportMetadata.reportFormat as sent, kept for unsupported formats.
	ReportFormat string
	Result       ParseResult
	Groups       []Group
	// Sections is the per-section aggregate table with the union of aggregate columns.
	Sections     *Table
	// Skipped describes fact map elements dropped or defaulted while decoding.
	Skipped      []string
}

type DashboardBundle struct {
	ID       string
	Results  json.RawMessage
	Metadata json.RawMessage
}
