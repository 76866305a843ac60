package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fbstats/internal/normalize"

	"github.com/stretchr/testify/require"
)

func TestWriteCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "premier_league_stats.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the new file\n"), 0644))

	f := normalize.Frame{
		Columns: []string{"Squad", "Pts"},
		Rows:    [][]string{{"Arsenal", "10"}},
	}
	require.NoError(t, Write(f, path, ""))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Squad,Pts\nArsenal,10\n", string(b))
}

func TestWriteEmptyFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "la_liga_stats.csv")

	err := Write(normalize.Frame{Columns: []string{"Squad"}}, path, "csv")
	require.ErrorIs(t, err, ErrNoData)

	err = Write(normalize.Frame{}, path, "csv")
	require.ErrorIs(t, err, ErrNoData)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestWriteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "2024", "serie_a_stats.json")
	f := normalize.Frame{Columns: []string{"Squad"}, Rows: [][]string{{"Inter"}}}

	require.NoError(t, Write(f, path, "json"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"Squad": "Inter"`)
}

func TestPathFor(t *testing.T) {
	require.Equal(t, "bundesliga_stats.csv", PathFor("", "bundesliga_stats.csv", "csv"))
	require.Equal(t, filepath.Join("data", "bundesliga_stats.csv"), PathFor("data", "bundesliga_stats.csv", ""))
	require.Equal(t, filepath.Join("data", "bundesliga_stats.json"), PathFor("data", "bundesliga_stats.csv", "json"))
	require.Equal(t, "bundesliga_stats.md", PathFor("", "bundesliga_stats.csv", "markdown"))
}

func TestPreviewShowsAtMostNRows(t *testing.T) {
	f := normalize.Frame{Columns: []string{"Squad"}}
	for _, s := range []string{"Liverpool", "Arsenal", "Chelsea", "Spurs", "Newcastle", "Villa", "Fulham"} {
		f.Rows = append(f.Rows, []string{s})
	}

	var buf bytes.Buffer
	Preview(&buf, f, 5)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "  Preview:\n"))
	require.Contains(t, out, "Squad")
	require.Contains(t, out, "Newcastle")
	require.NotContains(t, out, "Villa")
	require.NotContains(t, out, "Fulham")
}
