package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/salesdash/salesdash/internal/analytics"
)

// DashboardPayload aggregates dashboard data destined for PDF rendering.
type DashboardPayload struct {
	ExportID    string
	GeneratedAt time.Time
	Metric      analytics.Dimension
	Summary     analytics.KPISummary
	Dataset     analytics.Dataset
}

// PDFExporter wraps Gotenberg interactions for dashboard exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// RenderDashboard sends HTML content to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html, err := BuildHTML(payload)
	if err != nil {
		return nil, err
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500ms"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if payload.ExportID != "" {
		req.Header.Set("Gotenberg-Trace", payload.ExportID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

// Ping checks that the Gotenberg health endpoint answers.
func (p *PDFExporter) Ping(ctx context.Context) error {
	if p == nil || strings.TrimSpace(p.Endpoint) == "" {
		return fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.Endpoint, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

var pdfTemplate = template.Must(template.New("pdf").Funcs(template.FuncMap{
	"grouped":  analytics.FormatGrouped,
	"roubles":  analytics.FormatRoubles,
	"metric":   analytics.FormatMetricValue,
	"funnel":   analytics.FunnelConversionAt,
	"traffic":  analytics.TrafficSharePercent,
	"category": analytics.CategorySharePercent,
	"overall":  analytics.OverallConversion,
	"inc":      func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="ru"><head><meta charset="utf-8"><title>{{.Dataset.Title}}</title><style>
body{font-family:sans-serif;margin:24px;color:#0f172a}h1{font-size:20px;margin:0}h2{font-size:15px;margin:0 0 8px}
.muted{color:#64748b;font-size:12px}table{width:100%;border-collapse:collapse;margin-bottom:16px;font-size:12px}
th,td{border:1px solid #e2e8f0;padding:6px;text-align:right}th{background:#f8fafc}.label{text-align:left}section{margin-bottom:20px}
</style></head><body>
<h1>{{.Dataset.Title}}</h1>
<p class="muted">{{.Dataset.Subtitle}}</p>
<section><h2>Ключевые показатели</h2><table><tbody>
<tr><td class="label">Выручка</td><td>{{roubles .Summary.TotalRevenue}}</td></tr>
<tr><td class="label">Рост vs пред. период</td><td>{{.Summary.GrowthPercent}}%</td></tr>
<tr><td class="label">Заказы</td><td>{{grouped .Summary.TotalOrders}}</td></tr>
<tr><td class="label">Средний чек</td><td>{{roubles .Summary.AvgOrderValue}}</td></tr>
<tr><td class="label">Посетители</td><td>{{grouped .Summary.TotalVisitors}}</td></tr>
<tr><td class="label">Конверсия</td><td>{{.Summary.ConversionRate}}%</td></tr>
{{if .Metric.Valid}}<tr><td class="label">{{.Metric.Config.Label}} (выбрано)</td><td>{{metric .Metric (.Summary.Total .Metric)}}</td></tr>{{end}}
<tr><td class="label">План продаж</td><td>{{.Summary.Target.Percent}}% из {{roubles .Summary.SalesTarget}}</td></tr>
</tbody></table></section>
{{with .Dataset.Daily}}<section><h2>Динамика за {{len .}} дней</h2><table><thead><tr><th class="label">Дата</th><th>Выручка</th><th>Заказы</th><th>Посетители</th></tr></thead><tbody>
{{range .}}<tr><td class="label">{{.Date}}</td><td>{{grouped .Revenue}}</td><td>{{grouped .Orders}}</td><td>{{grouped .Visitors}}</td></tr>
{{end}}</tbody></table></section>{{end}}
{{with $all := .Dataset.Categories}}<section><h2>Продажи по категориям</h2><table><tbody>
{{range $all}}<tr><td class="label">{{.Name}}</td><td>{{roubles .Value}}</td><td>{{category . $all}}%</td></tr>
{{end}}</tbody></table></section>{{end}}
{{with .Dataset.Products}}<section><h2>Топ-10 товаров</h2><table><tbody>
{{range $i, $p := .}}<tr><td class="label">{{inc $i}}. {{$p.Product}}</td><td>{{roubles $p.Revenue}}</td><td>{{$p.Units}} шт</td></tr>
{{end}}</tbody></table></section>{{end}}
{{with $all := .Dataset.Funnel}}<section><h2>Воронка конверсии</h2><table><tbody>
{{range $i, $s := $all}}<tr><td class="label">{{$s.Label}}</td><td>{{grouped $s.Value}}</td><td>{{funnel $all $i}}%</td></tr>
{{end}}</tbody></table><p class="muted">Общая конверсия: {{overall $all}}%</p></section>{{end}}
{{with $all := .Dataset.Traffic}}<section><h2>Источники трафика</h2><table><tbody>
{{range $all}}<tr><td class="label">{{.Name}}</td><td>{{grouped .Visitors}}</td><td>{{traffic . $all}}%</td></tr>
{{end}}</tbody></table></section>{{end}}
{{with .Dataset.Regions}}<section><h2>Продажи по регионам</h2><table><tbody>
{{range .}}<tr><td class="label">{{.Region}}</td><td>{{roubles .Revenue}}</td><td>{{.Orders}} шт</td></tr>
{{end}}</tbody></table></section>{{end}}
<p class="muted">Данные обновлены: {{.Dataset.UpdatedAt}} | Экспорт {{.ExportID}} от {{.GeneratedAt.Format "02.01.2006 15:04"}}</p>
</body></html>`))

// BuildHTML renders the printable dashboard document sent to Gotenberg.
func BuildHTML(payload DashboardPayload) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdfTemplate.Execute(&buf, payload); err != nil {
		return nil, fmt.Errorf("render pdf html: %w", err)
	}
	return buf.Bytes(), nil
}
