// Package table converts trapkit results into rows for CLI tables.
package table

import (
	"strconv"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Empty reports whether the table has no rows.
func (d Data) Empty() bool {
	return len(d.Rows) == 0
}

// FormatRate formats a pass rate with two decimals.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64)
}

// FormatPercent formats a pass rate as a whole percentage.
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 0, 64) + "%"
}

// dash returns "-" for empty strings.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
