package analytics

import "math"

// KPISummary contains the headline indicators surfaced on the dashboard cards.
type KPISummary struct {
	TotalRevenue      int64    `json:"total_revenue"`
	TotalOrders       int64    `json:"total_orders"`
	TotalVisitors     int64    `json:"total_visitors"`
	AvgOrderValue     int64    `json:"avg_order_value"`
	ConversionRate    string   `json:"conversion_rate"`
	FirstHalfRevenue  int64    `json:"first_half_revenue"`
	SecondHalfRevenue int64    `json:"second_half_revenue"`
	GrowthPercent     int64    `json:"growth_percent"`
	SalesTarget       int64    `json:"sales_target"`
	Target            Progress `json:"target"`
}

// Total returns the summed value of a dimension.
func (s KPISummary) Total(d Dimension) int64 {
	switch d {
	case DimensionRevenue:
		return s.TotalRevenue
	case DimensionOrders:
		return s.TotalOrders
	case DimensionVisitors:
		return s.TotalVisitors
	default:
		return 0
	}
}

// Progress is a completion percentage. Percent is the raw rounded value shown
// as text, Width is the same value clamped to [0,100] for a progress bar.
type Progress struct {
	Percent int64 `json:"percent"`
	Width   int64 `json:"width"`
}

// BuildKPISummary derives every KPI from the daily records.
func BuildKPISummary(daily []DailyRecord, target int64) KPISummary {
	revenue := SumField(daily, DimensionRevenue)
	orders := SumField(daily, DimensionOrders)
	visitors := SumField(daily, DimensionVisitors)
	split := len(daily) / 2
	first, second := splitRevenue(daily, split)
	return KPISummary{
		TotalRevenue:      revenue,
		TotalOrders:       orders,
		TotalVisitors:     visitors,
		AvgOrderValue:     Average(revenue, orders),
		ConversionRate:    ConversionRate(orders, visitors),
		FirstHalfRevenue:  first,
		SecondHalfRevenue: second,
		GrowthPercent:     PeriodGrowth(daily, split),
		SalesTarget:       target,
		Target:            TargetProgress(revenue, target),
	}
}

// SumField sums a dimension across the records.
func SumField(records []DailyRecord, d Dimension) int64 {
	var total int64
	for _, r := range records {
		total += d.Value(r)
	}
	return total
}

// Average returns total/count rounded half up, or 0 when count is 0.
func Average(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return roundHalfUp(float64(total) / float64(count))
}

// ConversionRate formats orders/visitors as a percentage with two decimals.
// Zero visitors yields "0.00".
func ConversionRate(orders, visitors int64) string {
	return toFixed(percentOf(orders, visitors), 2)
}

// PeriodGrowth compares revenue in records[:split] against records[split:]
// and returns the rounded growth percentage. A zero first period yields 0.
func PeriodGrowth(records []DailyRecord, split int) int64 {
	first, second := splitRevenue(records, split)
	if first == 0 {
		return 0
	}
	return roundHalfUp(float64(second-first) / float64(first) * 100)
}

// TargetProgress relates total to target. Non-positive targets yield zero progress.
func TargetProgress(total, target int64) Progress {
	if target <= 0 {
		return Progress{}
	}
	pct := roundHalfUp(float64(total) / float64(target) * 100)
	width := pct
	if width < 0 {
		width = 0
	}
	if width > 100 {
		width = 100
	}
	return Progress{Percent: pct, Width: width}
}

func splitRevenue(records []DailyRecord, split int) (int64, int64) {
	if split < 0 {
		split = 0
	}
	if split > len(records) {
		split = len(records)
	}
	return SumField(records[:split], DimensionRevenue), SumField(records[split:], DimensionRevenue)
}

func percentOf(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// roundHalfUp matches the browser's Math.round, which rounds .5 towards +Inf.
func roundHalfUp(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v + 0.5))
}
