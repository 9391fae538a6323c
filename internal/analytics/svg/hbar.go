package svg

import (
	"fmt"
	"html/template"
	"strings"
)

const hbarRowHeight = 28.0

// HBars renders horizontal bars, one row per label. The height grows with the
// number of rows when the given height is too small.
func HBars(width, height int, values []float64, labels []string, opts HBarOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if err := matchLength(len(values), opts.ValueLabels, opts.BarTitles, opts.Colors); err != nil {
		return "", err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding / 2
	}
	labelWidth := opts.LabelWidth
	if labelWidth <= 0 {
		labelWidth = 140
	}
	// Space to the right of the longest bar for its value label.
	valueGutter := 64.0
	needed := int(2*padding + hbarRowHeight*float64(len(values)))
	if height < needed {
		height = needed
	}

	axisColor := fallback(opts.AxisColor, "#64748b")
	color := fallback(opts.Color, Palette[0])

	trackX := padding + labelWidth
	trackWidth := float64(width) - trackX - valueGutter - padding
	if trackWidth <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	_, maxVal := bounds(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	titleID := makeID(opts.Title, "hbar-title")
	descID := makeID(opts.Title, "hbar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Ranked values"))))

	for i, value := range values {
		rowY := padding + float64(i)*hbarRowHeight
		barHeight := hbarRowHeight * 0.65
		barY := rowY + (hbarRowHeight-barHeight)/2
		w := clampHeight(value/maxVal*trackWidth, trackWidth)
		fill := color
		if len(opts.Colors) > 0 {
			fill = fallback(opts.Colors[i], color)
		}
		textY := rowY + hbarRowHeight/2 + 4
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"end\">%s</text>", trackX-8, textY, axisColor, template.HTMLEscapeString(labels[i])))
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"4\" fill=\"%s\" aria-label=\"%s\">", trackX, barY, w, barHeight, fill, template.HTMLEscapeString(labels[i])))
		if len(opts.BarTitles) > 0 {
			b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(opts.BarTitles[i])))
		}
		b.WriteString("</rect>")
		if len(opts.ValueLabels) > 0 {
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s</text>", trackX+w+6, textY, axisColor, template.HTMLEscapeString(opts.ValueLabels[i])))
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
