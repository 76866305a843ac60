// Package normalize maps a raw league table onto the canonical output columns.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"fbstats/internal/log"
	"fbstats/internal/table"
)

// Missing marks a value that is absent or could not be computed.
const Missing = ""

var logger = log.NewLogger("normalize")

// Column is a canonical output column and the predicate that picks its
// source label.
type Column struct {
	Name  string
	Kind  Kind
	Match func(label string) bool
}

// Kind says how a column's cells are written out.
type Kind int

const (
	// Text cells are copied as they are.
	Text Kind = iota
	// Count cells are whole numbers: "+6" is written as 6.
	Count
	// Decimal cells are written in shortest form: "2.50" is written as 2.5.
	Decimal
)

// Columns is the canonical output schema in priority order. For each column
// the first raw label that matches wins.
var Columns = []Column{
	{Name: "Squad", Kind: Text, Match: containsFold("Squad")},
	{Name: "MP", Kind: Count, Match: containsFold("MP")},
	{Name: "W", Kind: Count, Match: containsFold("W")},
	{Name: "D", Kind: Count, Match: matchDraws},
	{Name: "L", Kind: Count, Match: containsFold("L")},
	{Name: "GF", Kind: Count, Match: containsFold("GF")},
	{Name: "GA", Kind: Count, Match: containsFold("GA")},
	{Name: "GD", Kind: Count, Match: containsFold("GD")},
	{Name: "Pts", Kind: Count, Match: containsFold("Pts")},
	{Name: "Pts/MP", Kind: Decimal, Match: containsFold("Pts/MP")},
	{Name: "xG", Kind: Decimal, Match: containsFold("xG")},
	{Name: "xGA", Kind: Decimal, Match: containsFold("xGA")},
	{Name: "xGD", Kind: Decimal, Match: containsFold("xGD")},
}

func containsFold(token string) func(string) bool {
	token = strings.ToLower(token)
	return func(label string) bool {
		return strings.Contains(strings.ToLower(label), token)
	}
}

// matchDraws accepts "D" or a flattened label ending in "_D" / " D". A plain
// substring match would pick up "Squad".
func matchDraws(label string) bool {
	label = strings.TrimSpace(label)
	if label == "D" {
		return true
	}
	return (strings.HasSuffix(label, "_D") || strings.HasSuffix(label, " D")) &&
		!strings.Contains(strings.ToLower(label), "squad")
}

// Frame is a normalized record set: one row per team, columns in canonical order.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (f Frame) Len() int {
	return len(f.Rows)
}

// Empty reports whether the frame holds no rows.
func (f Frame) Empty() bool {
	return len(f.Rows) == 0
}

// Index returns the position of the named column, or -1.
func (f Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Head returns a frame holding at most the first n rows.
func (f Frame) Head(n int) Frame {
	if n < 0 || n >= len(f.Rows) {
		return f
	}
	return Frame{Columns: f.Columns, Rows: f.Rows[:n]}
}

type derivation struct {
	name    string
	a, b    string
	combine func(a, b float64) (float64, bool)
}

var derivations = []derivation{
	{name: "Pts/MP", a: "Pts", b: "MP", combine: func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}},
	{name: "xGD", a: "xG", b: "xGA", combine: func(a, b float64) (float64, bool) {
		return a - b, true
	}},
}

// Normalize selects the canonical columns from t, derives Pts/MP and xGD
// when the page lacks them and drops rows that are not teams. Canonical
// columns with no matching label are left out.
func Normalize(t table.Table) Frame {
	var (
		f     Frame
		src   []int
		kinds []Kind
	)
	for _, c := range Columns {
		idx := -1
		for i, label := range t.Labels {
			if c.Match(label) {
				idx = i
				break
			}
		}
		if idx < 0 {
			logger.Debug().Str("column", c.Name).Msg("No matching source column")
			continue
		}
		f.Columns = append(f.Columns, c.Name)
		src = append(src, idx)
		kinds = append(kinds, c.Kind)
	}

	f.Rows = make([][]string, 0, len(t.Rows))
	for _, raw := range t.Rows {
		row := make([]string, len(src))
		for i, idx := range src {
			if idx < len(raw) {
				row[i] = formatCell(kinds[i], raw[idx])
			}
		}
		f.Rows = append(f.Rows, row)
	}

	for _, d := range derivations {
		f = derive(f, d)
	}

	return filterTeams(f)
}

func derive(f Frame, d derivation) Frame {
	if f.Index(d.name) >= 0 {
		return f
	}
	a, b := f.Index(d.a), f.Index(d.b)
	if a < 0 || b < 0 {
		return f
	}

	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		x, okA := parseNumber(row[a])
		y, okB := parseNumber(row[b])
		if !okA || !okB {
			values[i] = Missing
			continue
		}
		v, ok := d.combine(x, y)
		if !ok {
			values[i] = Missing
			continue
		}
		values[i] = FormatFloat(round2(v))
	}

	return insertColumn(f, d.name, values)
}

// insertColumn places name at its canonical position among the present columns.
func insertColumn(f Frame, name string, values []string) Frame {
	rank := canonicalRank(name)
	at := len(f.Columns)
	for i, c := range f.Columns {
		if canonicalRank(c) > rank {
			at = i
			break
		}
	}

	out := Frame{
		Columns: insertAt(f.Columns, at, name),
		Rows:    make([][]string, len(f.Rows)),
	}
	for i, row := range f.Rows {
		out.Rows[i] = insertAt(row, at, values[i])
	}
	return out
}

func insertAt(s []string, at int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	return append(out, s[at:]...)
}

func canonicalRank(name string) int {
	for i, c := range Columns {
		if c.Name == name {
			return i
		}
	}
	return len(Columns)
}

// filterTeams drops rows with no Squad and the repeated header rows FBref
// injects into long tables.
func filterTeams(f Frame) Frame {
	squad := f.Index("Squad")
	out := Frame{Columns: f.Columns, Rows: make([][]string, 0, len(f.Rows))}
	if squad < 0 {
		return out
	}
	for _, row := range f.Rows {
		name := strings.TrimSpace(row[squad])
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "squad") || strings.Contains(lower, "rk") {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// formatCell writes numeric cells the same way whatever the page's
// formatting. Cells that are not numbers are kept.
func formatCell(k Kind, s string) string {
	if k == Text {
		return s
	}
	v, ok := parseNumber(s)
	if !ok {
		return s
	}
	if k == Count && v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return FormatFloat(v)
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// FormatFloat renders v in its shortest form with at least one fractional
// digit, e.g. 2.5 or 1.0.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
