// Package logging provides mix report generation for rendered playlists.
// This file contains reusable table formatting infrastructure for aligned
// multi-column report tables.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// ReportRow represents a single row in a report table.
// Values are pre-formatted strings to allow mixed formatting.
type ReportRow struct {
	Label  string   // Row label, e.g. a track title
	Values []string // One value per column
	Note   string   // Optional trailing note (only shown if non-empty)
}

// ReportTable formats aligned columns.
// Handles variable column widths, missing values, and an optional note column.
type ReportTable struct {
	Headers []string
	Rows    []ReportRow
}

// NewReportTable creates a table with the given column headers. The label
// column is implicit.
func NewReportTable(headers ...string) *ReportTable {
	return &ReportTable{Headers: headers}
}

// AddRow adds a row with pre-formatted values.
func (t *ReportTable) AddRow(label string, values []string, note string) {
	t.Rows = append(t.Rows, ReportRow{Label: label, Values: values, Note: note})
}

// String renders the table with aligned columns.
// - Labels are left-aligned
// - Values are right-aligned within their column
// - The note column is only shown if any row has one
func (t *ReportTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasNote := false
	for _, row := range t.Rows {
		if row.Note != "" {
			hasNote = true
			break
		}
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	var sb strings.Builder

	// Header row
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if hasNote {
		sb.WriteString("Note")
	}
	sb.WriteString("\n")

	// Data rows
	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))

		for i := 0; i < len(t.Headers); i++ {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}

		if hasNote {
			sb.WriteString(row.Note)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// formatMetric formats a numeric value with the given precision.
// NaN and Inf display as MissingValue.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	format := fmt.Sprintf("%%.%df", decimals)
	return fmt.Sprintf(format, value)
}

// formatMetricSigned formats a value with an explicit sign for positive
// values, e.g. "+2.5".
func formatMetricSigned(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	format := fmt.Sprintf("%%+.%df", decimals)
	return fmt.Sprintf(format, value)
}
