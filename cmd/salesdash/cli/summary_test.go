package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/analytics"
)

func sampleSource(t *testing.T, mutate func(*analytics.Dataset)) analytics.Source {
	t.Helper()
	d := analytics.SampleDataset()
	if mutate != nil {
		mutate(&d)
	}
	source, err := analytics.NewStaticSource(d)
	require.NoError(t, err)
	return source
}

func TestSummaryCommandJSON(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	code := SummaryCommand(context.Background(), sampleSource(t, nil), SummaryOptions{
		Metric:     "orders",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Equal(t, 0, code, stderr.String())

	var report SummaryReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, analytics.DimensionOrders, report.Metric)
	assert.Equal(t, int64(2002), report.MetricTotal)
	assert.Equal(t, int64(6_479_000), report.Summary.TotalRevenue)
	assert.Equal(t, "3.65", report.OverallConversion)
	assert.Empty(t, report.Warnings)
}

func TestSummaryCommandHuman(t *testing.T) {
	stdout := new(bytes.Buffer)
	code := SummaryCommand(context.Background(), sampleSource(t, nil), SummaryOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, 0, code)

	out := stdout.String()
	assert.Contains(t, out, "E-commerce Аналитика (30 декабря 2024)")
	assert.Contains(t, out, "+40% vs пред. период")
	assert.Contains(t, out, "конверсия 3.59%")
	assert.Contains(t, out, "План продаж:  93%")
}

func TestSummaryCommandWarnsOnUnorderedData(t *testing.T) {
	source := sampleSource(t, func(d *analytics.Dataset) {
		d.Products[0], d.Products[1] = d.Products[1], d.Products[0]
	})
	stdout := new(bytes.Buffer)
	code := SummaryCommand(context.Background(), source, SummaryOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})
	assert.Equal(t, 10, code)
	assert.Contains(t, stdout.String(), "warning: products are not ordered by revenue")
}

func TestSummaryCommandRejectsBadFlags(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := SummaryCommand(context.Background(), sampleSource(t, nil), SummaryOptions{Metric: "profit", Stdout: new(bytes.Buffer), Stderr: stderr})
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "summary: "))

	stderr.Reset()
	code = SummaryCommand(context.Background(), sampleSource(t, nil), SummaryOptions{Target: -1, Stdout: new(bytes.Buffer), Stderr: stderr})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "--target")
}

func TestJobsCLIRequiresConfiguration(t *testing.T) {
	_, err := NewJobsCLI("")
	assert.Error(t, err)

	var c *JobsCLI
	_, err = c.Trigger(context.Background(), "warmup", false)
	assert.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
}
