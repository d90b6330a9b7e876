// Package render formats company views for the terminal and for
// spreadsheet export.
package render

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bottomtick/factsboard/internal/facts"
)

var printer = message.NewPrinter(language.English)

// FormatValue renders a value for its XBRL unit. Currency and share counts
// are abbreviated; per-share amounts keep cents.
func FormatValue(v float64, unit string) string {
	switch unit {
	case "USD":
		if v < 0 {
			return "-$" + abbreviate(-v)
		}
		return "$" + abbreviate(v)
	case "USD/shares":
		return printer.Sprintf("$%.2f", v)
	case "shares":
		return abbreviate(v)
	case "pure":
		return printer.Sprintf("%.4f", v)
	default:
		return printer.Sprintf("%.2f", v)
	}
}

func abbreviate(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return printer.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return printer.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return printer.Sprintf("%.2fM", v/1e6)
	default:
		return printer.Sprintf("%.0f", v)
	}
}

// FormatNumber groups thousands.
func FormatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatPercent renders a signed percentage.
func FormatPercent(p float64) string {
	return printer.Sprintf("%+.1f%%", p)
}

// TrendLabel renders a trend with an arrow.
func TrendLabel(t facts.Trend) string {
	switch t {
	case facts.TrendUp:
		return "▲ up"
	case facts.TrendDown:
		return "▼ down"
	default:
		return "= neutral"
	}
}
