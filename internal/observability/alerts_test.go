package observability

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

var metricName = regexp.MustCompile(`salesdash_[a-z_]+`)

func TestDashboardAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "dashboard.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}
	if len(spec.Groups) != 1 || spec.Groups[0].Name != "dashboard" {
		t.Fatalf("expected a single dashboard group, got %+v", spec.Groups)
	}

	expected := map[string]string{
		"HighErrorRate":  "critical",
		"HighLatency":    "warning",
		"CacheMissSpike": "warning",
		"ExportFailures": "warning",
	}
	rules := spec.Groups[0].Rules
	if len(rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(rules))
	}

	known := map[string]bool{
		"salesdash_http_requests_total":                  true,
		"salesdash_http_request_duration_seconds_bucket": true,
		"salesdash_cache_lookups_total":                  true,
		"salesdash_exports_total":                        true,
	}
	for _, rule := range rules {
		severity, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.Expr == "" || rule.For == "" {
			t.Fatalf("rule %s must define an expression and hold duration", rule.Alert)
		}
		for _, name := range metricName.FindAllString(rule.Expr, -1) {
			if !known[name] {
				t.Fatalf("rule %s references unknown metric %s", rule.Alert, name)
			}
		}
	}
}
