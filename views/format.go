package views

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Money formats an amount as "$12,500" (cents kept only when present).
func Money(v float64) string {
	if v == float64(int64(v)) {
		return "$" + humanize.Comma(int64(v))
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}

// Ago formats t relative to now, e.g. "3 days ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// Fit truncates s to width cells with an ellipsis and pads it on the right.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = truncate.StringWithTail(s, uint(width), "…")
	}
	return runewidth.FillRight(s, width)
}
