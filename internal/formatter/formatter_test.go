package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"fbstats/internal/normalize"

	"github.com/stretchr/testify/require"
)

var frame = normalize.Frame{
	Columns: []string{"Squad", "Pts", "Pts/MP"},
	Rows: [][]string{
		{"Arsenal", "10", "2.5"},
		{"Brighton & Hove Albion", "7", ""},
	},
}

func TestFormatCSV(t *testing.T) {
	out, err := Format(frame, CSV)
	require.NoError(t, err)
	require.Equal(t, "Squad,Pts,Pts/MP\nArsenal,10,2.5\nBrighton & Hove Albion,7,\n", string(out))
}

func TestFormatJSONKeepsColumnOrder(t *testing.T) {
	out, err := Format(frame, JSON)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "2.5", rows[0]["Pts/MP"])
	require.Equal(t, "", rows[1]["Pts/MP"])

	first := strings.Split(string(out), "\n")[1]
	require.Equal(t, `  {"Squad": "Arsenal", "Pts": "10", "Pts/MP": "2.5"},`, first)

	empty, err := Format(normalize.Frame{Columns: []string{"Squad"}}, JSON)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(empty))
}

func TestFormatMarkdown(t *testing.T) {
	out, err := Format(frame, Markdown)
	require.NoError(t, err)
	require.Contains(t, string(out), "| Squad | Pts | Pts/MP |")
	require.Contains(t, string(out), "| Arsenal | 10 | 2.5 |")
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(frame, "xlsx")
	require.Error(t, err)
	require.False(t, Valid("xlsx"))
	require.True(t, Valid(Markdown))
}

func TestExtension(t *testing.T) {
	require.Equal(t, ".csv", Extension(CSV))
	require.Equal(t, ".json", Extension(JSON))
	require.Equal(t, ".md", Extension(Markdown))
}
