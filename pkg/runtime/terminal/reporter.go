package terminal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Reporter outputs JSON documents to the console, indented for reading
type Reporter struct {
	writer io.Writer
	indent string
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, indent: "  "}
}

// Raw re-indents a JSON document without decoding it, so key order survives.
func (c *Reporter) Raw(doc []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", c.indent); err != nil {
		return fmt.Errorf("failed to format document: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(c.writer)
	return err
}

func (c *Reporter) Value(v any) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", c.indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
