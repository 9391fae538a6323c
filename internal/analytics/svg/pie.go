package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"unicode/utf8"
)

// Pie renders a pie chart, or a donut when opts.InnerRadius is positive, with
// a legend to the right of the circle.
func Pie(width, height int, values []float64, labels []string, opts PieOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if err := matchLength(len(values), opts.SliceTitles, opts.LegendLabels); err != nil {
		return "", err
	}
	if opts.InnerRadius < 0 || opts.InnerRadius >= 1 {
		return "", fmt.Errorf("svg: inner radius must be within [0,1)")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	total := 0.0
	for _, v := range values {
		if v < 0 {
			return "", fmt.Errorf("svg: negative slice value")
		}
		total += v
	}

	colors := opts.Colors
	if len(colors) == 0 {
		colors = Palette
	}
	axisColor := fallback(opts.AxisColor, "#64748b")

	cy := float64(height) / 2
	radius := cy - DefaultPadding/2
	cx := radius + DefaultPadding/2
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	inner := radius * opts.InnerRadius

	legendX := cx + radius + DefaultPadding
	legends := labels
	if len(opts.LegendLabels) > 0 {
		legends = opts.LegendLabels
	}
	// Grow the viewBox so the longest legend row is never clipped.
	if need := int(math.Ceil(legendX + legendTextOffset + legendWidth(legends) + DefaultPadding/2)); need > width {
		width = need
	}

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share of total"))))

	if total <= 0 {
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"#e2e8f0\"></circle>", cx, cy, radius))
	}

	// Slices start at twelve o'clock and run clockwise.
	angle := -math.Pi / 2
	for i, value := range values {
		if total <= 0 || value <= 0 {
			continue
		}
		sweep := value / total * 2 * math.Pi
		color := colors[i%len(colors)]
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" stroke=\"#ffffff\" stroke-width=\"1\" aria-label=\"%s\">", slicePath(cx, cy, radius, inner, angle, sweep), color, template.HTMLEscapeString(labels[i])))
		if len(opts.SliceTitles) > 0 {
			b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(opts.SliceTitles[i])))
		}
		b.WriteString("</path>")
		angle += sweep
	}

	if inner > 0 && opts.CenterLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#0f172a\" font-size=\"18\" font-weight=\"700\" text-anchor=\"middle\">%s</text>", cx, cy+2, template.HTMLEscapeString(opts.CenterLabel)))
		if opts.CenterDetail != "" {
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\">%s</text>", cx, cy+18, axisColor, template.HTMLEscapeString(opts.CenterDetail)))
		}
	}

	legendY := cy - float64(len(labels))*10 + 6
	for i, text := range legends {
		y := legendY + float64(i)*20
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" rx=\"2\" fill=\"%s\"></rect>", legendX, y-9, colors[i%len(colors)]))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s</text>", legendX+legendTextOffset, y, axisColor, template.HTMLEscapeString(text)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

const (
	legendTextOffset = 16
	// Average advance of a font-size 11 glyph, Cyrillic included.
	legendCharWidth = 7
)

func legendWidth(legends []string) float64 {
	longest := 0
	for _, l := range legends {
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	return float64(longest * legendCharWidth)
}

func slicePath(cx, cy, outer, inner, start, sweep float64) string {
	// A single full slice cannot be drawn as one arc.
	if sweep >= 2*math.Pi-1e-9 {
		sweep = 2*math.Pi - 1e-4
	}
	end := start + sweep
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	x1, y1 := polar(cx, cy, outer, start)
	x2, y2 := polar(cx, cy, outer, end)
	if inner <= 0 {
		return fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z", cx, cy, x1, y1, outer, outer, large, x2, y2)
	}
	x3, y3 := polar(cx, cy, inner, end)
	x4, y4 := polar(cx, cy, inner, start)
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		x1, y1, outer, outer, large, x2, y2, x3, y3, inner, inner, large, x4, y4)
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}
