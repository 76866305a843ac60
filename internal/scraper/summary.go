package scraper

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fbstats/internal/league"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const rule = "============================================================"

// Banner returns the run header listing the selected leagues.
func Banner(leagues []league.League) string {
	return fmt.Sprintf("\n%s\nScraping %d league(s): %s\n%s", rule, len(leagues), strings.Join(league.Names(leagues), ", "), rule)
}

// Summary prints the per-league outcome table followed by a success count.
// total is the number of leagues selected, which may exceed len(results)
// when the run was interrupted.
func Summary(w io.Writer, results []Result, total int, started time.Time) {
	fmt.Fprintf(w, "\n%s\nSCRAPING SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Timestamp: %s\n\n", started.Format("2006-01-02 15:04:05"))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"", "League", "Status", "Teams"})

	success := 0
	for _, res := range results {
		mark := "✗"
		if res.Status == StatusSuccess {
			mark = "✓"
			success++
		}
		t.AppendRow(table.Row{mark, res.League, string(res.Status), res.Teams})
	}
	t.Render()

	fmt.Fprintf(w, "%s\n\nCompleted: %d/%d league(s) scraped successfully\n", rule, success, total)
}
