package view

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

const (
	progressWidth = 40
	sparkRunes    = "▁▂▃▄▅▆▇█"
	maxSparkLen   = 72
)

// Render writes a plain-text rendering of the page: the refresh bar, then
// every panel with its texts and a sparkline per chart.
func (p *Page) Render(w io.Writer) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	filled := int(math.Round(p.progress / 100 * progressWidth))
	filled = max(0, min(progressWidth, filled))
	if _, err := fmt.Fprintf(w, "[%s%s] %3.0f%%\n\n",
		strings.Repeat("#", filled), strings.Repeat(".", progressWidth-filled), p.progress); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, panel := range p.panels {
		title := panel.Title
		if title == "" {
			title = panel.ID
		}
		if panel.Loading() {
			fmt.Fprintf(tw, "%s\t(loading)\n", title)
			continue
		}
		fmt.Fprintf(tw, "%s\t\n", title)
		for _, id := range panel.texts {
			fmt.Fprintf(tw, "  %s\t%s\n", id, p.texts[id])
		}
		for _, id := range panel.canvases {
			if c := p.charts[id]; c != nil {
				labels, values := c.Data()
				fmt.Fprintf(tw, "  %s\t%s\n", id, sparkline(labels, values))
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// sparkline scales values between the series min and max, keeping the
// most recent points when the series is long.
func sparkline(labels []string, values []float64) string {
	if len(values) == 0 {
		return "(no data)"
	}
	if len(values) > maxSparkLen {
		values = values[len(values)-maxSparkLen:]
		labels = labels[len(labels)-maxSparkLen:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	runes := []rune(sparkRunes)
	var b strings.Builder
	for _, v := range values {
		i := 0
		if hi > lo {
			i = int((v - lo) / (hi - lo) * float64(len(runes)-1))
		}
		b.WriteRune(runes[i])
	}
	return fmt.Sprintf("%s %s..%s [%g, %g]", b.String(), labels[0], labels[len(labels)-1], lo, hi)
}
