package api

import "encoding/json"

type Profile struct {
	Name        string `json:"name"`
	InstanceURL string `json:"instance_url"`
	APIVersion  string `json:"api_version"`
}

type Table struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type Group struct {
	Name       string `json:"name"`
	Aggregates any    `json:"aggregates"`
	Rows       *Table `json:"rows,omitempty"`
}

type ParsedReport struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Format    string   `json:"format"`
	Supported bool     `json:"supported"`
	Status    string   `json:"status"`
	Detail    *Table   `json:"detail,omitempty"`
	Summary   *Table   `json:"summary,omitempty"`
	Sections  *Table   `json:"sections,omitempty"`
	Groups    []Group  `json:"groups,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
}

type ReportListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DashboardListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DashboardBundle struct {
	ID       string          `json:"id"`
	Results  json.RawMessage `json:"results,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type QueryRequest struct {
	Document json.RawMessage `json:"document"`
	Path     string          `json:"path"`
}

type QueryResponse struct {
	Path    string            `json:"path"`
	Results []json.RawMessage `json:"results"`
}

type Error struct {
	Error string `json:"error"`
}
