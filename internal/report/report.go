// Package report renders a scan result as a sorted plain-text report with a
// proportional histogram column.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dux/internal/scan"
)

const (
	// MaxBarWidth is the histogram column width in '#' marks.
	MaxBarWidth = 20

	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2

	dividerWidth = 64
)

// Options control presentation only; the scan result is never mutated.
type Options struct {
	// Reverse inverts the metric order (ties stay name-ascending).
	Reverse bool
	// NoIndicators suppresses the "/" and "@" name suffixes.
	NoIndicators bool
	// NoGrouping disables thousands separators in the metric column.
	NoGrouping bool
	// MaxBarWidth overrides the histogram width (0 = MaxBarWidth).
	MaxBarWidth int
}

// Row is the derived, read-only view of one entry.
type Row struct {
	scan.Entry

	// Percentage is Metric relative to the grand total, 0 when the total is 0.
	Percentage float64
	// BarWidth is the histogram width in marks, in [0, MaxBarWidth].
	BarWidth int
}

// Rows sorts the entries and derives percentages and bar widths.
//
// Entries are ordered by metric descending, ties broken by name ascending,
// independent of filesystem enumeration order. A zero-metric entry always
// gets an empty bar.
func Rows(result *scan.Result, opts Options) ([]Row, error) {
	width := opts.MaxBarWidth
	if width == 0 {
		width = MaxBarWidth
	}

	if width < 0 {
		return nil, fmt.Errorf("bar width cannot be negative: %d", opts.MaxBarWidth)
	}

	entries := append([]scan.Entry(nil), result.Entries...)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Metric != entries[j].Metric {
			if opts.Reverse {
				return entries[i].Metric < entries[j].Metric
			}

			return entries[i].Metric > entries[j].Metric
		}

		return entries[i].Name < entries[j].Name
	})

	rows := make([]Row, 0, len(entries))

	for _, entry := range entries {
		row := Row{Entry: entry}

		if result.Total > 0 {
			row.Percentage = 100 * float64(entry.Metric) / float64(result.Total)
		}

		if entry.Metric > 0 {
			row.BarWidth = int(math.Round(row.Percentage / 100 * float64(width)))
			if row.BarWidth > width {
				row.BarWidth = width
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Render writes the full report: divider, title, column header, one row per
// entry and a footer with the grand total. Columns grow to fit the widest
// value present.
func Render(writer io.Writer, result *scan.Result, opts Options) error {
	rows, err := Rows(result, opts)
	if err != nil {
		return err
	}

	label, unit := "Size (kB)", "kB"
	if result.Mode == scan.ModeInodes {
		label, unit = "Inodes", "inodes"
	}

	fmt.Fprintln(writer, strings.Repeat("=", dividerWidth))
	fmt.Fprintf(writer, "Statistics of directory %q\n\n", result.Root)

	tw := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(tw, "%s\tin %%\thistogram\tname\n", label)

	for _, row := range rows {
		name := row.Name
		if !opts.NoIndicators {
			name += row.Kind.Indicator()
		}

		fmt.Fprintf(tw, "%s\t%6.2f\t%s\t%s\n",
			formatMetric(row.Metric, opts.NoGrouping),
			row.Percentage,
			strings.Repeat("#", row.BarWidth),
			name)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}

	fmt.Fprintf(writer, "\nTotal: %s %s\n", formatMetric(result.Total, opts.NoGrouping), unit)

	return nil
}

func formatMetric(n int64, noGrouping bool) string {
	if noGrouping {
		return strconv.FormatInt(n, 10)
	}

	return humanize.Comma(n)
}
