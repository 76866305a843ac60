package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fbstats/internal/formatter"
	"fbstats/internal/normalize"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
)

// ErrNoData is returned by Write when there is nothing to save.
var ErrNoData = errors.New("no data to save")

// PathFor returns where a league file is written: filename inside dir, with
// the extension swapped to match format.
func PathFor(dir, filename, format string) string {
	if format != "" && format != formatter.CSV {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + formatter.Extension(format)
	}
	if dir == "" {
		return filename
	}
	return filepath.Join(dir, filename)
}

// Write renders f and writes it to path, replacing any existing file. An
// empty frame returns ErrNoData and leaves the file system untouched.
func Write(f normalize.Frame, path, format string) error {
	if f.Empty() {
		return errors.WithStack(ErrNoData)
	}
	if format == "" {
		format = formatter.CSV
	}

	data, err := formatter.Format(f, format)
	if err != nil {
		return errors.Wrapf(err, "failed to format %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Preview prints the first n rows of f as a table.
func Preview(w io.Writer, f normalize.Frame, n int) {
	fmt.Fprintln(w, "  Preview:")
	t := formatter.Table(f.Head(n))
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Render()
}
