package analytics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NBSP keeps a value and its unit on one line.
const NBSP = "\u00a0"

var displayLocale = language.Russian

// FormatGrouped renders an integer with ru-RU digit grouping.
func FormatGrouped(v int64) string {
	return message.NewPrinter(displayLocale).Sprintf("%d", v)
}

// FormatMillions renders v in millions with the given precision, e.g. "6.48M".
func FormatMillions(v int64, precision int) string {
	return toFixed(float64(v)/1_000_000, precision) + "M"
}

// FormatThousands renders v in whole thousands, e.g. "145k".
func FormatThousands(v int64) string {
	return toFixed(float64(v)/1_000, 0) + "k"
}

// FormatRoubles renders a grouped amount with the rouble sign.
func FormatRoubles(v int64) string {
	return FormatGrouped(v) + NBSP + "₽"
}

// FormatMetricValue renders a dimension total for the selector tabs: revenue
// in millions with two decimals, counts with locale grouping.
func FormatMetricValue(d Dimension, v int64) string {
	switch d {
	case DimensionRevenue:
		return FormatMillions(v, 2) + NBSP + "₽"
	default:
		return FormatGrouped(v)
	}
}

// FormatTooltip renders a single daily value for the chart tooltip.
func FormatTooltip(d Dimension, v int64) string {
	switch d {
	case DimensionRevenue:
		return FormatRoubles(v)
	case DimensionOrders:
		return fmt.Sprintf("%d шт", v)
	default:
		return FormatGrouped(v)
	}
}

// FormatAxisTick renders a y-axis tick for the daily chart.
func FormatAxisTick(d Dimension, v float64) string {
	if d == DimensionRevenue {
		return toFixed(v/1_000, 0) + "k"
	}
	return toFixed(v, 0)
}

// FormatPercent renders part/whole as a percentage with the given precision.
// A zero whole yields a zero percentage.
func FormatPercent(part, whole int64, precision int) string {
	return toFixed(percentOf(part, whole), precision)
}

// toFixed rounds half away from zero before formatting, so exact binary
// halves such as 3.25 become "3.3" rather than fmt's round-half-even "3.2".
func toFixed(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	scale := math.Pow10(precision)
	rounded := math.Floor(math.Abs(v)*scale+0.5) / scale
	if v < 0 && rounded != 0 {
		rounded = -rounded
	}
	return fmt.Sprintf("%.*f", precision, rounded)
}
