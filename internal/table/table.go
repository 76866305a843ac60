// Package table turns rendered HTML into labelled rows of text.
package table

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned by Find when no table has both Squad and Pts labels.
var ErrNotFound = errors.New("league table not found")

// LevelSeparator joins the levels of a multi-row header.
const LevelSeparator = "_"

const maxSpan = 1000

// Table is a parsed HTML table. Every row has len(Labels) cells; a missing
// cell is the empty string.
type Table struct {
	Labels []string
	Rows   [][]string
}

// Extract parses html and returns the first league table in it.
func Extract(html string) (Table, error) {
	tables, err := Parse(html)
	if err != nil {
		return Table{}, err
	}
	return Find(tables)
}

// Find returns the first table whose labels mention both Squad and Pts.
func Find(tables []Table) (Table, error) {
	for _, t := range tables {
		if t.hasLabel("Squad") && t.hasLabel("Pts") {
			return t, nil
		}
	}
	return Table{}, errors.WithStack(ErrNotFound)
}

func (t Table) hasLabel(token string) bool {
	for _, l := range t.Labels {
		if strings.Contains(l, token) {
			return true
		}
	}
	return false
}

// Parse returns every table in the document in document order, followed by
// the tables FBref ships inside HTML comments.
func Parse(html string) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		tables = append(tables, parseTable(s))
	})

	var commented []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#comment" {
			return
		}
		if data := s.Nodes[0].Data; strings.Contains(data, "<table") {
			commented = append(commented, data)
		}
	})
	for _, c := range commented {
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(c))
		if err != nil {
			continue
		}
		inner.Find("table").Each(func(_ int, s *goquery.Selection) {
			tables = append(tables, parseTable(s))
		})
	}

	return tables, nil
}

func parseTable(t *goquery.Selection) Table {
	var header, body []*goquery.Selection

	t.ChildrenFiltered("thead").ChildrenFiltered("tr").Each(func(_ int, r *goquery.Selection) {
		header = append(header, r)
	})

	rows := t.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		rows = t.ChildrenFiltered("tr")
	}
	leading := len(header) == 0
	rows.Each(func(_ int, r *goquery.Selection) {
		// Without a <thead>, leading rows made only of <th> cells are the header.
		if leading && r.ChildrenFiltered("td").Length() == 0 && r.ChildrenFiltered("th").Length() > 0 {
			header = append(header, r)
			return
		}
		leading = false
		body = append(body, r)
	})

	labels := flatten(headerGrid(header))

	out := Table{Labels: labels}
	for _, r := range body {
		cells := rowCells(r)
		if len(cells) == 0 {
			continue
		}
		if len(labels) == 0 {
			out.Labels = positionalLabels(len(cells))
			labels = out.Labels
		}
		row := make([]string, len(labels))
		copy(row, cells)
		out.Rows = append(out.Rows, row)
	}

	return out
}

// spanned is a header cell still occupying rows below the one it starts in.
type spanned struct {
	text string
	rows int
}

// headerGrid lays the header rows out as a grid of occupied slots, carrying
// rowspan cells down into the rows they cover.
func headerGrid(header []*goquery.Selection) [][]string {
	var (
		levels  = make([][]string, 0, len(header))
		pending = map[int]spanned{}
	)
	for _, r := range header {
		var level []string
		take := func() {
			col := len(level)
			if p, ok := pending[col]; ok {
				level = append(level, p.text)
				if p.rows--; p.rows > 0 {
					pending[col] = p
				} else {
					delete(pending, col)
				}
			}
		}

		r.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
			for covered(pending, len(level)) {
				take()
			}
			text := CleanText(c.Text())
			down := span(c, "rowspan") - 1
			for n := span(c, "colspan"); n > 0; n-- {
				if down > 0 {
					pending[len(level)] = spanned{text: text, rows: down}
				}
				level = append(level, text)
			}
		})
		// Spans to the right of the last cell.
		for len(pending) > 0 {
			if !covered(pending, len(level)) {
				if len(level) > maxSpanCol(pending) {
					break
				}
				level = append(level, "")
				continue
			}
			take()
		}
		levels = append(levels, level)
	}
	return levels
}

func covered(pending map[int]spanned, col int) bool {
	_, ok := pending[col]
	return ok
}

func maxSpanCol(pending map[int]spanned) int {
	m := -1
	for col := range pending {
		if col > m {
			m = col
		}
	}
	return m
}

// flatten collapses header levels into one label per column. Empty levels
// contribute nothing, so a blank group cell over "Squad" yields "Squad", and
// a level repeating the one above it (a rowspan cell) is not joined twice.
func flatten(levels [][]string) []string {
	width := 0
	for _, l := range levels {
		if len(l) > width {
			width = len(l)
		}
	}

	labels := make([]string, width)
	for i := range labels {
		var parts []string
		for _, l := range levels {
			if i >= len(l) || l[i] == "" {
				continue
			}
			if n := len(parts); n > 0 && parts[n-1] == l[i] {
				continue
			}
			parts = append(parts, l[i])
		}
		labels[i] = strings.Join(parts, LevelSeparator)
	}
	return labels
}

func positionalLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// rowCells returns the cell texts of r with colspan expanded.
func rowCells(r *goquery.Selection) []string {
	var cells []string
	r.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
		text := CleanText(c.Text())
		for n := span(c, "colspan"); n > 0; n-- {
			cells = append(cells, text)
		}
	})
	return cells
}

// span reads a colspan or rowspan attribute, clamped to [1, maxSpan].
func span(c *goquery.Selection, attr string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.AttrOr(attr, "1")))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// CleanText collapses whitespace, including non-breaking spaces, and
// normalizes to NFC so accented club names compare equal across pages.
func CleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
