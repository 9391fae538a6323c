package svg

import "html/template"

// Renderer exposes the package chart functions as methods so handlers can
// depend on interfaces.
type Renderer struct{}

// Line renders an area chart.
func (Renderer) Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	return Line(width, height, series, labels, opts)
}

// Bars renders a vertical bar chart.
func (Renderer) Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	return Bars(width, height, values, labels, opts)
}

// HBars renders a horizontal bar chart.
func (Renderer) HBars(width, height int, values []float64, labels []string, opts HBarOpts) (template.HTML, error) {
	return HBars(width, height, values, labels, opts)
}

// Pie renders a pie or donut chart.
func (Renderer) Pie(width, height int, values []float64, labels []string, opts PieOpts) (template.HTML, error) {
	return Pie(width, height, values, labels, opts)
}
