package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spyzhov/ajson"
)

var ErrInvalidPath = errors.New("invalid path")

// SampleSelectors are starting points for exploring a report run document.
var SampleSelectors = []string{
	`$.factMap['T!T']`,
	`$.factMap['T!T'].rows[*].dataCells[0].label`,
	`$.reportMetadata.detailColumns`,
	`$.factMap['T!T'].aggregates`,
	`$.factMap.*.aggregates[*].value`,
}

// Evaluate runs a JSONPath expression over doc and returns every match as JSON.
// jq style selectors such as .factMap."0!T".rows[] are accepted as well.
func Evaluate(doc []byte, expr string) ([]json.RawMessage, error) {
	path, err := ToJSONPath(expr)
	if err != nil {
		return nil, err
	}

	nodes, err := ajson.JSONPath(doc, path)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", path, err)
	}

	results := make([]json.RawMessage, 0, len(nodes))
	for _, node := range nodes {
		raw, err := ajson.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal match: %w", err)
		}
		// Marshal hands back the source bytes, whitespace included.
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, fmt.Errorf("failed to compact match: %w", err)
		}
		results = append(results, compact.Bytes())
	}
	return results, nil
}

// ToJSONPath rewrites a jq path selector into JSONPath. Expressions already
// starting with "$" pass through unchanged.
func ToJSONPath(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "$") {
		return expr, nil
	}
	if !strings.HasPrefix(expr, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, expr)
	}

	var b strings.Builder
	b.WriteString("$")
	for i := 0; i < len(expr); {
		switch {
		case expr[i] == '.' && i+1 < len(expr) && expr[i+1] == '"':
			end := strings.IndexByte(expr[i+2:], '"')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated key in %q", ErrInvalidPath, expr)
			}
			key := expr[i+2 : i+2+end]
			if strings.ContainsRune(key, '\'') {
				return "", fmt.Errorf("%w: quote in key %q", ErrInvalidPath, key)
			}
			b.WriteString("['" + key + "']")
			i += end + 3
		case expr[i] == '.':
			j := i + 1
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			if j > i+1 {
				b.WriteString(expr[i:j])
			}
			i = j
		case expr[i] == '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, expr)
			}
			inner := expr[i+1 : i+end]
			if inner == "" {
				inner = "*"
			}
			b.WriteString("[" + inner + "]")
			i += end + 1
		default:
			return "", fmt.Errorf("%w: unexpected %q in %q", ErrInvalidPath, expr[i], expr)
		}
	}
	return b.String(), nil
}
