package league

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrOutOfRange    = errors.New("choice out of range")
)

// League is a competition page on FBref and the file its table is saved to.
type League struct {
	Name     string
	URL      string
	Filename string
}

var leagues = []League{
	{
		Name:     "Premier League",
		URL:      "https://fbref.com/en/comps/9/Premier-League-Stats",
		Filename: "premier_league_stats.csv",
	},
	{
		Name:     "La Liga",
		URL:      "https://fbref.com/en/comps/12/La-Liga-Stats",
		Filename: "la_liga_stats.csv",
	},
	{
		Name:     "Serie A",
		URL:      "https://fbref.com/en/comps/11/Serie-A-Stats",
		Filename: "serie_a_stats.csv",
	},
	{
		Name:     "Bundesliga",
		URL:      "https://fbref.com/en/comps/20/Bundesliga-Stats",
		Filename: "bundesliga_stats.csv",
	},
}

// All returns the supported leagues in menu order.
func All() []League {
	return slices.Clone(leagues)
}

// Names returns the names of ls.
func Names(ls []League) []string {
	names := make([]string, len(ls))
	for i, l := range ls {
		names[i] = l.Name
	}
	return names
}

// ParseSelection resolves a menu answer. len(available)+1 selects every
// league; otherwise input is a comma-separated list of 1-based positions,
// kept in the given order, duplicates included.
func ParseSelection(input string, available []League) ([]League, error) {
	input = strings.TrimSpace(input)
	if input == strconv.Itoa(len(available)+1) {
		return slices.Clone(available), nil
	}

	parts := strings.Split(input, ",")
	choices := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidChoice, "%q is not a number", strings.TrimSpace(p))
		}
		choices = append(choices, n)
	}

	selected := make([]League, 0, len(choices))
	for _, n := range choices {
		if n < 1 || n > len(available) {
			return nil, errors.Wrapf(ErrOutOfRange, "%d", n)
		}
		selected = append(selected, available[n-1])
	}
	return selected, nil
}

// Prompt prints the league menu to out and reads answers from in until one
// parses. Invalid answers print a hint and ask again.
func Prompt(in io.Reader, out io.Writer, available []League) ([]League, error) {
	fmt.Fprintln(out, "\nAvailable leagues:")
	for i, l := range available {
		fmt.Fprintf(out, "  %d. %s\n", i+1, l.Name)
	}
	fmt.Fprintf(out, "  %d. All leagues\n", len(available)+1)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nEnter your choice (number or comma-separated numbers, e.g., 1,3): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, errors.Wrap(err, "failed to read selection")
			}
			return nil, errors.New("no league selected")
		}

		selected, err := ParseSelection(scanner.Text(), available)
		switch {
		case err == nil:
			return selected, nil
		case errors.Is(err, ErrOutOfRange):
			fmt.Fprintf(out, "Please enter numbers between 1 and %d\n", len(available)+1)
		default:
			fmt.Fprintln(out, "Invalid input. Please enter numbers separated by commas (e.g., 1,3)")
		}
	}
}
