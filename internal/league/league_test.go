package league

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	all := All()

	testCases := []struct {
		input    string
		expected []string
	}{
		{input: "1", expected: []string{"Premier League"}},
		{input: "1,3", expected: []string{"Premier League", "Serie A"}},
		{input: " 4 , 2 ", expected: []string{"Bundesliga", "La Liga"}},
		{input: "2,2", expected: []string{"La Liga", "La Liga"}},
		{input: "5", expected: []string{"Premier League", "La Liga", "Serie A", "Bundesliga"}},
		{input: " 5\n", expected: []string{"Premier League", "La Liga", "Serie A", "Bundesliga"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSelection(tc.input, all)
			require.NoError(t, err)
			require.Equal(t, tc.expected, Names(got))
		})
	}
}

func TestParseSelectionErrors(t *testing.T) {
	all := All()

	for _, input := range []string{"", "abc", "1,,2", "1;3", "all"} {
		_, err := ParseSelection(input, all)
		require.ErrorIs(t, err, ErrInvalidChoice, "input %q", input)
	}

	// The sentinel only counts on its own.
	for _, input := range []string{"0", "6", "1,5", "-1"} {
		_, err := ParseSelection(input, all)
		require.ErrorIs(t, err, ErrOutOfRange, "input %q", input)
	}
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	require.Equal(t, "Premier League", All()[0].Name)
}

func TestPromptRepromptsUntilValid(t *testing.T) {
	in := strings.NewReader("x\n9\n3,1\n")
	var out bytes.Buffer

	got, err := Prompt(in, &out, All())
	require.NoError(t, err)
	require.Equal(t, []string{"Serie A", "Premier League"}, Names(got))

	text := out.String()
	require.Contains(t, text, "  5. All leagues")
	require.Contains(t, text, "Invalid input. Please enter numbers separated by commas (e.g., 1,3)")
	require.Contains(t, text, "Please enter numbers between 1 and 5")
	require.Equal(t, 3, strings.Count(text, "Enter your choice"))
}

func TestPromptEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := Prompt(strings.NewReader("bogus\n"), &out, All())
	require.Error(t, err)
}
