package svg

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"math"
	"strings"
)

// Line renders a responsive SVG area chart for the given series and labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	if len(opts.PointTitles) > 0 && len(opts.PointTitles) != len(series) {
		return "", fmt.Errorf("svg: point titles length must match series")
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
	labelEvery := opts.LabelEvery
	if labelEvery <= 1 {
		labelEvery = 1
	}
	strokeColor := fallback(opts.StrokeColor, Palette[0])
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	axisColor := fallback(opts.AxisColor, "#64748b")
	gridColor := fallback(opts.GridColor, "#e2e8f0")

	// Left gutter leaves room for the tick labels.
	left := padding * 2
	chartWidth := float64(width) - left - padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	minVal, maxVal := bounds(series)
	if minVal > 0 {
		minVal = 0
	}
	if maxVal < 0 {
		maxVal = 0
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	scale := chartHeight / (maxVal - minVal)

	pointX := func(i int) float64 {
		if len(series) == 1 {
			return left + chartWidth/2
		}
		return left + float64(i)*chartWidth/float64(len(series)-1)
	}
	pointY := func(v float64) float64 {
		return padding + chartHeight - (v-minVal)*scale
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		path.WriteString(fmt.Sprintf("%s%.2f %.2f", cmd, pointX(i), pointY(value)))
	}

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")
	gradientID := makeID(opts.Title, "line-fill")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Line chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Trend data"))))

	if opts.Gradient {
		fillColor = fmt.Sprintf("url(#%s)", gradientID)
		b.WriteString("<defs>")
		b.WriteString(fmt.Sprintf("<linearGradient id=\"%s\" x1=\"0\" y1=\"0\" x2=\"0\" y2=\"1\">", gradientID))
		b.WriteString(fmt.Sprintf("<stop offset=\"5%%\" stop-color=\"%s\" stop-opacity=\"0.3\"></stop>", strokeColor))
		b.WriteString(fmt.Sprintf("<stop offset=\"95%%\" stop-color=\"%s\" stop-opacity=\"0\"></stop>", strokeColor))
		b.WriteString("</linearGradient></defs>")
	}

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := padding + chartHeight - ratio*chartHeight
		value := minVal + (maxVal-minVal)*ratio
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", left, y, left+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+4, axisColor, template.HTMLEscapeString(tick(value))))
	}

	base := padding + chartHeight
	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), pointX(len(series)-1), base, pointX(0), base)
	b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fillColor))
	b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), strokeColor))

	if opts.ShowDots || len(opts.PointTitles) > 0 {
		radius := 3
		if !opts.ShowDots {
			radius = 6
		}
		for i, value := range series {
			fill := strokeColor
			if !opts.ShowDots {
				fill = "transparent"
			}
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%d\" fill=\"%s\">", pointX(i), pointY(value), radius, fill))
			if len(opts.PointTitles) > 0 {
				b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(opts.PointTitles[i])))
			}
			b.WriteString("</circle>")
		}
	}

	for i, label := range labels {
		if i%labelEvery != 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", pointX(i), base+14, axisColor, template.HTMLEscapeString(label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Empty renders the placeholder shown when a chart has no records.
func Empty(width, height int, message string) template.HTML {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return template.HTML(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\"><text x=\"%d\" y=\"%d\" fill=\"#94a3b8\" font-size=\"12\" text-anchor=\"middle\">%s</text></svg>",
		width, height, width/2, height/2, template.HTMLEscapeString(fallback(message, "No data"))))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	for strings.Contains(cleaned, "--") {
		cleaned = strings.ReplaceAll(cleaned, "--", "-")
	}
	if cleaned == "" {
		// Non-latin titles still need distinct ids on a shared page.
		h := fnv.New32a()
		_, _ = h.Write([]byte(base))
		cleaned = fmt.Sprintf("chart-%08x", h.Sum32())
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.1f", v)
	}
}
