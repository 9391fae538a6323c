package ui

import (
	"fmt"
	"net/url"

	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/analytics/svg"
)

// BuildCards maps the KPI summary onto the three headline cards.
func BuildCards(summary analytics.KPISummary) []KPICard {
	badge := fmt.Sprintf("%d%%", summary.GrowthPercent)
	if summary.GrowthPercent > 0 {
		badge = "+" + badge
	}
	return []KPICard{
		{
			Title:         "Выручка",
			Value:         analytics.FormatMetricValue(analytics.DimensionRevenue, summary.TotalRevenue),
			Detail:        "vs пред. период",
			Badge:         badge,
			BadgePositive: summary.GrowthPercent > 0,
		},
		{
			Title:  "Заказы",
			Value:  analytics.FormatGrouped(summary.TotalOrders),
			Detail: "Средний чек: " + analytics.FormatRoubles(summary.AvgOrderValue),
		},
		{
			Title:  "Посетители",
			Value:  analytics.FormatGrouped(summary.TotalVisitors),
			Detail: "Конверсия: " + summary.ConversionRate + "%",
		},
	}
}

// BuildTargetCard maps the plan progress onto its card.
func BuildTargetCard(summary analytics.KPISummary) TargetCard {
	return TargetCard{
		Title:   "План продаж",
		Percent: summary.Target.Percent,
		Width:   summary.Target.Width,
		Target:  analytics.FormatRoubles(summary.SalesTarget),
		Caption: "План: " + analytics.FormatRoubles(summary.SalesTarget),
	}
}

// BuildTabs returns one selector tab per dimension, marking the active one.
// Each tab links back to path with the dimension in the metric query parameter.
func BuildTabs(summary analytics.KPISummary, active analytics.Dimension, path string) []MetricTab {
	dims := analytics.Dimensions()
	tabs := make([]MetricTab, 0, len(dims))
	for _, d := range dims {
		cfg := d.Config()
		q := url.Values{}
		q.Set("metric", d.String())
		tabs = append(tabs, MetricTab{
			Dimension: d,
			Label:     cfg.Label,
			Value:     analytics.FormatMetricValue(d, summary.Total(d)),
			Color:     cfg.Color,
			Href:      path + "?" + q.Encode(),
			Active:    d == active,
		})
	}
	return tabs
}

// ToDailyPoints projects the daily records onto the active dimension.
func ToDailyPoints(records []analytics.DailyRecord, d analytics.Dimension) []DailyPoint {
	points := make([]DailyPoint, 0, len(records))
	for _, r := range records {
		v := d.Value(r)
		points = append(points, DailyPoint{
			Date:    r.Date,
			Value:   v,
			Tooltip: fmt.Sprintf("%s: %s", r.Date, analytics.FormatTooltip(d, v)),
		})
	}
	return points
}

// ToCategorySlices adds shares and tooltips to the category breakdown.
func ToCategorySlices(categories []analytics.CategoryRecord) []CategorySlice {
	slices := make([]CategorySlice, 0, len(categories))
	for i, c := range categories {
		slices = append(slices, CategorySlice{
			Key:     c.Category,
			Name:    c.Name,
			Value:   c.Value,
			Share:   analytics.CategorySharePercent(c, categories),
			Tooltip: fmt.Sprintf("%s: %s%s₽", c.Name, analytics.FormatMillions(c.Value, 2), analytics.NBSP),
			Color:   paletteColor(i),
		})
	}
	return slices
}

// ToProductRows ranks products in the given order.
func ToProductRows(products []analytics.ProductRecord) []ProductRow {
	rows := make([]ProductRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, ProductRow{
			Rank:    i + 1,
			Name:    p.Product,
			Revenue: p.Revenue,
			Units:   p.Units,
			Label:   analytics.FormatThousands(p.Revenue),
			Tooltip: fmt.Sprintf("%s: %s (%d шт)", p.Product, analytics.FormatRoubles(p.Revenue), p.Units),
		})
	}
	return rows
}

// ToFunnelRows adds stage-to-stage conversion to the funnel.
func ToFunnelRows(stages []analytics.FunnelStage) []FunnelRow {
	rows := make([]FunnelRow, 0, len(stages))
	for i, s := range stages {
		conv := analytics.FunnelConversionAt(stages, i)
		rows = append(rows, FunnelRow{
			Stage:      s.Stage,
			Label:      s.Label,
			Value:      s.Value,
			Conversion: conv,
			Tooltip:    fmt.Sprintf("%s: %s (%s%% от пред.)", s.Label, analytics.FormatGrouped(s.Value), conv),
			Color:      paletteColor(i),
		})
	}
	return rows
}

// ToTrafficRows adds shares of total visitors to the traffic sources.
func ToTrafficRows(sources []analytics.TrafficSource) []TrafficRow {
	rows := make([]TrafficRow, 0, len(sources))
	for i, s := range sources {
		share := analytics.TrafficSharePercent(s, sources)
		rows = append(rows, TrafficRow{
			Source:   s.Source,
			Name:     s.Name,
			Visitors: s.Visitors,
			Share:    share,
			Tooltip:  fmt.Sprintf("%s: %s (%s%%)", s.Name, analytics.FormatGrouped(s.Visitors), share),
			Color:    paletteColor(i),
		})
	}
	return rows
}

// ToRegionRows labels each city with its revenue in millions.
func ToRegionRows(regions []analytics.RegionRecord) []RegionRow {
	rows := make([]RegionRow, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, RegionRow{
			Region:  r.Region,
			Revenue: r.Revenue,
			Orders:  r.Orders,
			Label:   analytics.FormatMillions(r.Revenue, 1),
			Tooltip: fmt.Sprintf("%s: %s, %d шт", r.Region, analytics.FormatRoubles(r.Revenue), r.Orders),
		})
	}
	return rows
}

func paletteColor(i int) string {
	return svg.Palette[i%len(svg.Palette)]
}
