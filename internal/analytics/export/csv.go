package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/salesdash/salesdash/internal/analytics"
)

// WriteKPICSV serialises the KPI summary as Metric,Value rows.
func WriteKPICSV(w io.Writer, summary analytics.KPISummary, metric analytics.Dimension) error {
	rows := [][]string{
		{"Active Metric", metric.String()},
		{"Total Revenue", itoa(summary.TotalRevenue)},
		{"Total Orders", itoa(summary.TotalOrders)},
		{"Total Visitors", itoa(summary.TotalVisitors)},
		{"Average Order Value", itoa(summary.AvgOrderValue)},
		{"Conversion Rate %", summary.ConversionRate},
		{"First Half Revenue", itoa(summary.FirstHalfRevenue)},
		{"Second Half Revenue", itoa(summary.SecondHalfRevenue)},
		{"Growth %", itoa(summary.GrowthPercent)},
		{"Sales Target", itoa(summary.SalesTarget)},
		{"Target Progress %", itoa(summary.Target.Percent)},
	}
	return writeTable(w, []string{"Metric", "Value"}, rows)
}

// WriteDailyCSV emits the daily series with every dimension.
func WriteDailyCSV(w io.Writer, records []analytics.DailyRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Date, itoa(r.Revenue), itoa(r.Orders), itoa(r.Visitors)})
	}
	return writeTable(w, []string{"Date", "Revenue", "Orders", "Visitors"}, rows)
}

// WriteCategoryCSV emits category revenue with its share of the total.
func WriteCategoryCSV(w io.Writer, categories []analytics.CategoryRecord) error {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Category, c.Name, itoa(c.Value), analytics.CategorySharePercent(c, categories)})
	}
	return writeTable(w, []string{"Category", "Name", "Revenue", "Share %"}, rows)
}

// WriteProductsCSV emits the ranked product list.
func WriteProductsCSV(w io.Writer, products []analytics.ProductRecord) error {
	rows := make([][]string, 0, len(products))
	for i, p := range products {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Product, itoa(p.Revenue), itoa(p.Units)})
	}
	return writeTable(w, []string{"Rank", "Product", "Revenue", "Units"}, rows)
}

// WriteFunnelCSV emits funnel stages with stage-to-stage conversion.
func WriteFunnelCSV(w io.Writer, stages []analytics.FunnelStage) error {
	rows := make([][]string, 0, len(stages))
	for i, s := range stages {
		rows = append(rows, []string{s.Stage, s.Label, itoa(s.Value), analytics.FunnelConversionAt(stages, i)})
	}
	return writeTable(w, []string{"Stage", "Label", "Value", "Conversion %"}, rows)
}

// WriteTrafficCSV emits traffic sources with their share of visitors.
func WriteTrafficCSV(w io.Writer, sources []analytics.TrafficSource) error {
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{s.Source, s.Name, itoa(s.Visitors), analytics.TrafficSharePercent(s, sources)})
	}
	return writeTable(w, []string{"Source", "Name", "Visitors", "Share %"}, rows)
}

// WriteRegionsCSV emits regional revenue and orders.
func WriteRegionsCSV(w io.Writer, regions []analytics.RegionRecord) error {
	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, []string{r.Region, itoa(r.Revenue), itoa(r.Orders)})
	}
	return writeTable(w, []string{"Region", "Revenue", "Orders"}, rows)
}

// WriteDashboardCSV writes every section separated by blank lines.
func WriteDashboardCSV(w io.Writer, summary analytics.KPISummary, metric analytics.Dimension, d analytics.Dataset) error {
	sections := []func(io.Writer) error{
		func(w io.Writer) error { return WriteKPICSV(w, summary, metric) },
		func(w io.Writer) error { return WriteDailyCSV(w, d.Daily) },
		func(w io.Writer) error { return WriteCategoryCSV(w, d.Categories) },
		func(w io.Writer) error { return WriteProductsCSV(w, d.Products) },
		func(w io.Writer) error { return WriteFunnelCSV(w, d.Funnel) },
		func(w io.Writer) error { return WriteTrafficCSV(w, d.Traffic) },
		func(w io.Writer) error { return WriteRegionsCSV(w, d.Regions) },
	}
	for i, write := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := write(w); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
