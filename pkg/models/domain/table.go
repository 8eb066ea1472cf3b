package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Missing-value sentinels. They are not interchangeable: a data cell without a
// value shows MissingCell, an aggregate without a value counts as MissingAggregate,
// and a section that lacks an aggregate column another section has shows MissingColumn.
const (
	MissingCell      = "-"
	MissingAggregate = 0
	MissingColumn    = "N/A"
)

// Column names of the generated aggregate tables.
const (
	ColumnGrouping    = "Grouping"
	ColumnAggregates  = "Aggregates"
	ColumnRowGroup    = "RowGroup"
	ColumnColumnGroup = "ColumnGroup"
	ColumnSection     = "Section"
)

type Row map[string]any

// Table is a rectangular result: Columns fixes the order, Rows map column name to value.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cell returns the value at row i, or MissingCell when the row has no such column.
func (t *Table) Cell(i int, column string) any {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return MissingCell
	}
	v, ok := t.Rows[i][column]
	if !ok {
		return MissingCell
	}
	return v
}

// Aggregates holds one section's aggregate values, already defaulted.
// Names is set when the report's aggregate metric names were requested.
type Aggregates struct {
	Values []any
	Names  []string
}

// Joined renders the values in encounter order, comma separated.
func (a Aggregates) Joined() string {
	parts := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		parts = append(parts, FormatValue(v))
	}
	return strings.Join(parts, ", ")
}

// Named pairs values with metric names positionally, up to the shorter of the two.
func (a Aggregates) Named() NamedAggregates {
	n := min(len(a.Names), len(a.Values))
	out := make(NamedAggregates, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NamedValue{Name: a.Names[i], Value: a.Values[i]})
	}
	return out
}

// Display is what goes into an Aggregates table cell: the named mapping when
// names are known, the joined string otherwise.
func (a Aggregates) Display() any {
	if len(a.Names) > 0 {
		return a.Named()
	}
	return a.Joined()
}

type NamedValue struct {
	Name  string
	Value any
}

// NamedAggregates is an ordered name -> value mapping. It encodes as a JSON
// object with keys in metric order.
type NamedAggregates []NamedValue

func (n NamedAggregates) Get(name string) (any, bool) {
	for _, nv := range n {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return nil, false
}

func (n NamedAggregates) String() string {
	parts := make([]string, 0, len(n))
	for _, nv := range n {
		parts = append(parts, fmt.Sprintf("%s=%s", nv.Name, FormatValue(nv.Value)))
	}
	return strings.Join(parts, ", ")
}

func (n NamedAggregates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nv := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(nv.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(nv.Value)
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

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
