package svg

// TickFormatter renders an axis or value label.
type TickFormatter func(v float64) string

// LineOpts customises the line and area chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// Gradient fills the area with a vertical fade of StrokeColor instead of FillColor.
	Gradient bool
	// PointTitles become hover tooltips on each point; length must match the series.
	PointTitles   []string
	TickFormatter TickFormatter
	// LabelEvery thins x-axis labels; 0 or 1 prints every label.
	LabelEvery int
}

// BarOpts customises the vertical bar chart renderer.
type BarOpts struct {
	Title         string
	Description   string
	Color         string
	AxisColor     string
	GridColor     string
	Padding       float64
	TickCount     int
	ValueLabels   []string
	BarTitles     []string
	TickFormatter TickFormatter
}

// HBarOpts customises the horizontal bar renderer.
type HBarOpts struct {
	Title       string
	Description string
	Color       string
	// Colors overrides Color per bar when non-empty.
	Colors      []string
	AxisColor   string
	LabelWidth  float64
	Padding     float64
	ValueLabels []string
	BarTitles   []string
}

// PieOpts customises the pie and donut renderer.
type PieOpts struct {
	Title       string
	Description string
	Colors      []string
	// InnerRadius turns the pie into a donut when positive (ratio of the outer radius).
	InnerRadius  float64
	CenterLabel  string
	CenterDetail string
	SliceTitles  []string
	LegendLabels []string
	AxisColor    string
}

// Defaults for the analytics charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)

// Palette mirrors the dashboard chart colours.
var Palette = []string{"#2563eb", "#16a34a", "#f97316", "#a855f7", "#e11d48"}
