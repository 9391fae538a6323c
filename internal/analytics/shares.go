package analytics

// FunnelConversionAt returns the share of stage i relative to the previous
// stage with one decimal. The first stage compares against itself, so it is
// "100.0" unless empty. Out of range indexes and empty predecessors yield "0.0".
func FunnelConversionAt(stages []FunnelStage, i int) string {
	if i < 0 || i >= len(stages) {
		return FormatPercent(0, 0, 1)
	}
	prev := stages[i].Value
	if i > 0 {
		prev = stages[i-1].Value
	}
	return FormatPercent(stages[i].Value, prev, 1)
}

// OverallConversion relates the last funnel stage to the first with two decimals.
func OverallConversion(stages []FunnelStage) string {
	if len(stages) == 0 {
		return FormatPercent(0, 0, 2)
	}
	return FormatPercent(stages[len(stages)-1].Value, stages[0].Value, 2)
}

// TrafficTotal sums visitors across sources.
func TrafficTotal(sources []TrafficSource) int64 {
	var total int64
	for _, s := range sources {
		total += s.Visitors
	}
	return total
}

// TrafficSharePercent is the source's share of all visitors with one decimal.
func TrafficSharePercent(source TrafficSource, all []TrafficSource) string {
	return FormatPercent(source.Visitors, TrafficTotal(all), 1)
}

// CategoryTotal sums revenue across categories.
func CategoryTotal(categories []CategoryRecord) int64 {
	var total int64
	for _, c := range categories {
		total += c.Value
	}
	return total
}

// CategorySharePercent is the category's share of category revenue with one decimal.
func CategorySharePercent(category CategoryRecord, all []CategoryRecord) string {
	return FormatPercent(category.Value, CategoryTotal(all), 1)
}
