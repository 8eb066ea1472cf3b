package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReportResponse is the body of GET /analytics/reports/{id}?includeDetails=true,
// or the same document uploaded from disk.
type ReportResponse struct {
	Attributes     ReportAttributes `json:"attributes"`
	ReportMetadata ReportMetadata   `json:"reportMetadata"`
	FactMap        *FactMap         `json:"factMap"`
	AllData        bool             `json:"allData"`
	HasDetailRows  bool             `json:"hasDetailRows"`

	// Issues lists the parts of the fact map that were skipped or defaulted
	// while decoding.
	Issues []string `json:"-"`
}

// UnmarshalJSON treats a factMap that is not an object as absent.
func (r *ReportResponse) UnmarshalJSON(data []byte) error {
	type plain ReportResponse
	aux := struct {
		*plain
		FactMap json.RawMessage `json:"factMap"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.FactMap = nil
	r.Issues = nil
	raw := bytes.TrimSpace(aux.FactMap)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] != '{':
		r.Issues = append(r.Issues, "factMap is not an object, treated as absent")
	default:
		fm := NewFactMap()
		if err := fm.UnmarshalJSON(raw); err != nil {
			return err
		}
		r.FactMap = fm
		r.Issues = append(r.Issues, fm.Skipped()...)
	}
	return nil
}

type ReportAttributes struct {
	ReportID   string `json:"reportId"`
	ReportName string `json:"reportName"`
	Type       string `json:"type"`
}

type ReportMetadata struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ReportFormat  string   `json:"reportFormat"`
	DetailColumns []string `json:"detailColumns"`
	Aggregates    []string `json:"aggregates"`
}

type Section struct {
	Rows       []DataRow        `json:"rows"`
	Aggregates []AggregateValue `json:"aggregates"`
}

type DataRow struct {
	DataCells []DataCell `json:"dataCells"`
}

// DataCell keeps value and label as decoded; nil means absent or null.
type DataCell struct {
	Value any `json:"value,omitempty"`
	Label any `json:"label,omitempty"`
}

type AggregateValue struct {
	Value any `json:"value,omitempty"`
	Label any `json:"label,omitempty"`
}

// FactMap is the section map of a report in document order. Salesforce encodes
// groupings in the keys, and the order they arrive in is the order they render in,
// so a plain Go map is not enough.
type FactMap struct {
	keys     []string
	sections map[string]Section
	skipped  []string
}

func NewFactMap() *FactMap {
	return &FactMap{sections: make(map[string]Section)}
}

// Set stores a section. A key that is already present keeps its position.
func (f *FactMap) Set(key string, section Section) {
	if f.sections == nil {
		f.sections = make(map[string]Section)
	}
	if _, ok := f.sections[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.sections[key] = section
}

func (f *FactMap) Get(key string) (Section, bool) {
	if f == nil {
		return Section{}, false
	}
	s, ok := f.sections[key]
	return s, ok
}

func (f *FactMap) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

func (f *FactMap) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Each calls fn for every section in document order.
func (f *FactMap) Each(fn func(key string, section Section)) {
	if f == nil {
		return
	}
	for _, key := range f.keys {
		fn(key, f.sections[key])
	}
}

// Skipped describes the elements UnmarshalJSON dropped or defaulted because
// they did not have the expected shape.
func (f *FactMap) Skipped() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.skipped...)
}

// UnmarshalJSON only fails on malformed JSON or a top level that is not an
// object. Sections are decoded leniently, see decodeSection.
func (f *FactMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("factMap: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("factMap: expected object, got %v", tok)
	}

	f.keys = nil
	f.sections = make(map[string]Section)
	f.skipped = nil

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("factMap: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("factMap: unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("factMap section %q: %w", key, err)
		}
		section, skipped := decodeSection(key, raw)
		f.skipped = append(f.skipped, skipped...)
		f.Set(key, section)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("factMap: %w", err)
	}
	return nil
}

// decodeSection keeps whatever part of a section fits. A section that is not
// an object comes back empty, rows without a dataCells array are dropped, and
// cells or aggregates that are not objects become empty values so positions
// still line up with the columns.
func decodeSection(key string, raw json.RawMessage) (Section, []string) {
	var section Section
	var skipped []string
	note := func(format string, args ...any) {
		skipped = append(skipped, fmt.Sprintf("factMap[%q]: ", key)+fmt.Sprintf(format, args...))
	}

	var fields map[string]json.RawMessage
	if err := decodeNumbers(raw, &fields); err != nil {
		note("section is not an object")
		return section, skipped
	}

	if rawRows, ok := fields["rows"]; ok {
		var rows []json.RawMessage
		if err := decodeNumbers(rawRows, &rows); err != nil {
			note("rows is not an array")
		}
		for i, rawRow := range rows {
			var row struct {
				DataCells []json.RawMessage `json:"dataCells"`
			}
			if err := decodeNumbers(rawRow, &row); err != nil {
				note("row %d skipped: %v", i, err)
				continue
			}
			var cells []DataCell
			for j, rawCell := range row.DataCells {
				var cell DataCell
				if err := decodeNumbers(rawCell, &cell); err != nil {
					note("row %d cell %d defaulted: %v", i, j, err)
					cell = DataCell{}
				}
				cells = append(cells, cell)
			}
			section.Rows = append(section.Rows, DataRow{DataCells: cells})
		}
	}

	if rawAggs, ok := fields["aggregates"]; ok {
		var aggs []json.RawMessage
		if err := decodeNumbers(rawAggs, &aggs); err != nil {
			note("aggregates is not an array")
		}
		for i, rawAgg := range aggs {
			var agg AggregateValue
			if err := decodeNumbers(rawAgg, &agg); err != nil {
				note("aggregate %d defaulted: %v", i, err)
				agg = AggregateValue{}
			}
			section.Aggregates = append(section.Aggregates, agg)
		}
	}
	return section, skipped
}

func decodeNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func (f *FactMap) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.sections[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
