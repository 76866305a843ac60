package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"fbstats/internal/normalize"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

const (
	CSV      = "csv"
	JSON     = "json"
	Markdown = "markdown"
)

// Formats lists the supported output formats.
var Formats = []string{CSV, JSON, Markdown}

// Valid reports whether format is supported.
func Valid(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case JSON:
		return ".json"
	case Markdown:
		return ".md"
	default:
		return ".csv"
	}
}

// Format renders f in the given format.
func Format(f normalize.Frame, format string) ([]byte, error) {
	switch format {
	case CSV:
		return toCSV(f)
	case JSON:
		return toJSON(f)
	case Markdown:
		return []byte(toMarkdown(f) + "\n"), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func toCSV(f normalize.Frame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.Columns); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV header")
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV rows")
	}
	return buf.Bytes(), nil
}

// toJSON writes one object per team with keys in column order.
func toJSON(f normalize.Frame) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, row := range f.Rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, col := range f.Columns {
			if j > 0 {
				buf.WriteString(", ")
			}
			k, err := json.Marshal(col)
			if err != nil {
				return nil, errors.Wrap(err, "failed to encode column name")
			}
			v, err := json.Marshal(row[j])
			if err != nil {
				return nil, errors.Wrap(err, "failed to encode value")
			}
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(v)
		}
		buf.WriteString("}")
	}
	if len(f.Rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

func toMarkdown(f normalize.Frame) string {
	return Table(f).RenderMarkdown()
}

// Table loads f into a go-pretty table writer.
func Table(f normalize.Frame) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, r := range f.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	return t
}
