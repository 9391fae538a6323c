package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a vertical bar chart with optional value labels above each bar.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if err := matchLength(len(values), opts.ValueLabels, opts.BarTitles); err != nil {
		return "", err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	tick := opts.TickFormatter
	if tick == nil {
		tick = formatTick
	}

	axisColor := fallback(opts.AxisColor, "#64748b")
	gridColor := fallback(opts.GridColor, "#e2e8f0")
	color := fallback(opts.Color, Palette[0])

	left := padding * 2
	top := padding + 8
	chartWidth := float64(width) - left - padding
	chartHeight := float64(height) - top - padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	_, maxVal := bounds(values)
	if maxVal <= 0 || almostEqual(maxVal, 0) {
		maxVal = 1
	}
	scale := chartHeight / maxVal
	bottom := top + chartHeight

	slot := chartWidth / float64(len(values))
	barWidth := slot * 0.6

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Bar comparison"))))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := bottom - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", left, y, left+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+4, axisColor, template.HTMLEscapeString(tick(maxVal*ratio))))
	}
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\"></line>", left, bottom, left+chartWidth, bottom, axisColor))

	for i, value := range values {
		h := clampHeight(value*scale, chartHeight)
		x := left + float64(i)*slot + (slot-barWidth)/2
		y := bottom - h
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"4\" fill=\"%s\" aria-label=\"%s\">", x, y, barWidth, h, color, template.HTMLEscapeString(labels[i])))
		if len(opts.BarTitles) > 0 {
			b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(opts.BarTitles[i])))
		}
		b.WriteString("</rect>")
		center := x + barWidth/2
		if len(opts.ValueLabels) > 0 {
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, y-4, axisColor, template.HTMLEscapeString(opts.ValueLabels[i])))
		}
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, bottom+14, axisColor, template.HTMLEscapeString(labels[i])))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func matchLength(n int, lists ...[]string) error {
	for _, list := range lists {
		if len(list) > 0 && len(list) != n {
			return fmt.Errorf("svg: annotation length must match values")
		}
	}
	return nil
}

func clampHeight(h, limit float64) float64 {
	if h < 0 {
		return 0
	}
	if h > limit {
		return limit
	}
	return h
}
