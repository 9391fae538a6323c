package ui

import (
	"html/template"

	"github.com/salesdash/salesdash/internal/analytics"
	"github.com/salesdash/salesdash/internal/analytics/svg"
)

// DashboardFilters represents sanitized query filters used by the dashboard.
type DashboardFilters struct {
	Metric analytics.Dimension
}

// MetricTab is one entry of the daily chart dimension selector.
type MetricTab struct {
	Dimension analytics.Dimension
	Label     string
	Value     string
	Color     string
	Href      string
	Active    bool
}

// KPICard is a headline card shown above the charts.
type KPICard struct {
	Title  string
	Value  string
	Detail string
	// Badge is the optional growth chip, e.g. "+40%".
	Badge         string
	BadgePositive bool
}

// TargetCard is the sales plan progress card.
type TargetCard struct {
	Title   string
	Percent int64
	Width   int64
	Target  string
	Caption string
}

// DailyPoint is one day on the area chart and in the data table.
type DailyPoint struct {
	Date    string
	Value   int64
	Tooltip string
}

// CategorySlice represents a revenue category on the donut chart.
type CategorySlice struct {
	Key     string
	Name    string
	Value   int64
	Share   string
	Tooltip string
	Color   string
}

// ProductRow is a ranked product bar.
type ProductRow struct {
	Rank    int
	Name    string
	Revenue int64
	Units   int64
	Label   string
	Tooltip string
}

// FunnelRow is a funnel stage with its conversion from the previous stage.
type FunnelRow struct {
	Stage      string
	Label      string
	Value      int64
	Conversion string
	Tooltip    string
	Color      string
}

// TrafficRow is a traffic source slice.
type TrafficRow struct {
	Source   string
	Name     string
	Visitors int64
	Share    string
	Tooltip  string
	Color    string
}

// RegionRow is a city bar on the regional chart.
type RegionRow struct {
	Region  string
	Revenue int64
	Orders  int64
	Label   string
	Tooltip string
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters           DashboardFilters
	Title             string
	Subtitle          string
	UpdatedAt         string
	KPI               analytics.KPISummary
	Cards             []KPICard
	Target            TargetCard
	Tabs              []MetricTab
	ActiveLabel       string
	Daily             []DailyPoint
	Categories        []CategorySlice
	CategoryTotal     string
	Products          []ProductRow
	Funnel            []FunnelRow
	OverallConversion string
	Traffic           []TrafficRow
	Regions           []RegionRow
	DailySVG          template.HTML
	CategorySVG       template.HTML
	ProductsSVG       template.HTML
	FunnelSVG         template.HTML
	TrafficSVG        template.HTML
	RegionsSVG        template.HTML
}

// LineRenderer abstracts SVG area chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts vertical SVG bar chart rendering.
type BarRenderer interface {
	Bars(width, height int, values []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// HBarRenderer abstracts horizontal SVG bar chart rendering.
type HBarRenderer interface {
	HBars(width, height int, values []float64, labels []string, opts svg.HBarOpts) (template.HTML, error)
}

// PieRenderer abstracts SVG pie and donut rendering.
type PieRenderer interface {
	Pie(width, height int, values []float64, labels []string, opts svg.PieOpts) (template.HTML, error)
}

// ChartRenderer bundles every renderer the dashboard needs.
type ChartRenderer interface {
	LineRenderer
	BarRenderer
	HBarRenderer
	PieRenderer
}
