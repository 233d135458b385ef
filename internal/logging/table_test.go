package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive_inf", math.Inf(1), 2, MissingValue},
		{"negative_inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetric(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"positive_gets_sign", 2.5, 1, "+2.5"},
		{"negative", -1.2, 1, "-1.2"},
		{"zero", 0.0, 1, "+0.0"},
		{"nan", math.NaN(), 1, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricSigned(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetricSigned(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestReportTableEmpty(t *testing.T) {
	table := NewReportTable("BPM", "Key")
	if got := table.String(); got != "" {
		t.Errorf("empty table rendered %q, want empty string", got)
	}
}

func TestReportTableAlignment(t *testing.T) {
	table := NewReportTable("BPM", "Key")
	table.AddRow("1. Short", []string{"128.0", "8A"}, "")
	table.AddRow("2. A much longer title", []string{"95.5", "12B"}, "")

	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want 3 (header + 2 rows)", len(lines))
	}

	// All rows align to the same width.
	if len(lines[1]) != len(lines[2]) {
		t.Errorf("row widths differ: %d vs %d\n%s", len(lines[1]), len(lines[2]), out)
	}

	if !strings.Contains(lines[0], "BPM") || !strings.Contains(lines[0], "Key") {
		t.Errorf("header row missing column names: %q", lines[0])
	}
	if !strings.Contains(lines[1], "128.0") {
		t.Errorf("first row missing value: %q", lines[1])
	}
}

func TestReportTableMissingValues(t *testing.T) {
	table := NewReportTable("BPM", "Key")
	table.AddRow("1. Broken", []string{"", ""}, "decode failed")

	out := table.String()
	if !strings.Contains(out, MissingValue) {
		t.Errorf("missing values not rendered as %q:\n%s", MissingValue, out)
	}
	if !strings.Contains(out, "decode failed") {
		t.Errorf("note column missing:\n%s", out)
	}
	if !strings.Contains(out, "Note") {
		t.Errorf("note header missing:\n%s", out)
	}
}
