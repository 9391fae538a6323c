package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/salesdash/salesdash/internal/analytics"
)

// SummaryOptions defines available flags for the summary command.
type SummaryOptions struct {
	Metric     string
	Target     int64
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// SummaryReport is the JSON shape printed by the summary command.
type SummaryReport struct {
	Title             string               `json:"title"`
	UpdatedAt         string               `json:"updated_at"`
	Metric            analytics.Dimension  `json:"metric"`
	MetricTotal       int64                `json:"metric_total"`
	Summary           analytics.KPISummary `json:"summary"`
	OverallConversion string               `json:"overall_conversion"`
	Warnings          []string             `json:"warnings,omitempty"`
}

// SummaryCommand prints the KPI summary of a dataset. It exits with 10 when
// the dataset carries ordering warnings.
func SummaryCommand(ctx context.Context, source analytics.Source, opts SummaryOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	metric, err := analytics.ParseDimension(opts.Metric)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}
	if opts.Target < 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "summary: --target must not be negative")
		return 1
	}

	service := analytics.NewService(source, nil, opts.Target)
	dataset, err := service.GetDataset(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}
	if err := dataset.Validate(); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}
	summary, err := service.GetKPISummary(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "summary: %v\n", err)
		return 1
	}

	report := SummaryReport{
		Title:             dataset.Title,
		UpdatedAt:         dataset.UpdatedAt,
		Metric:            metric,
		MetricTotal:       summary.Total(metric),
		Summary:           summary,
		OverallConversion: analytics.OverallConversion(dataset.Funnel),
		Warnings:          datasetWarnings(dataset),
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(report); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "summary: encode json: %v\n", err)
			return 1
		}
	} else {
		renderSummaryHuman(opts.Stdout, report)
	}
	if len(report.Warnings) > 0 {
		return 10
	}
	return 0
}

func datasetWarnings(d analytics.Dataset) []string {
	var warnings []string
	if !analytics.ProductsSortedByRevenue(d.Products) {
		warnings = append(warnings, "products are not ordered by revenue")
	}
	if !analytics.FunnelMonotonic(d.Funnel) {
		warnings = append(warnings, "funnel stages grow between steps")
	}
	return warnings
}

func renderSummaryHuman(out io.Writer, r SummaryReport) {
	s := r.Summary
	_, _ = fmt.Fprintf(out, "%s (%s)\n", r.Title, r.UpdatedAt)
	_, _ = fmt.Fprintf(out, "Выручка:      %s (%+d%% vs пред. период)\n", analytics.FormatRoubles(s.TotalRevenue), s.GrowthPercent)
	_, _ = fmt.Fprintf(out, "Заказы:       %s, средний чек %s\n", analytics.FormatGrouped(s.TotalOrders), analytics.FormatRoubles(s.AvgOrderValue))
	_, _ = fmt.Fprintf(out, "Посетители:   %s, конверсия %s%%\n", analytics.FormatGrouped(s.TotalVisitors), s.ConversionRate)
	_, _ = fmt.Fprintf(out, "План продаж:  %d%% из %s\n", s.Target.Percent, analytics.FormatRoubles(s.SalesTarget))
	_, _ = fmt.Fprintf(out, "Воронка:      %s%% общая конверсия\n", r.OverallConversion)
	_, _ = fmt.Fprintf(out, "%s: %s\n", r.Metric.Config().Label, analytics.FormatMetricValue(r.Metric, r.MetricTotal))
	for _, w := range r.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
}
