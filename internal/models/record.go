package models

import "strings"

// Source column names consumed from the test sheets (case-sensitive)
const (
	ColumnInterface = "Interface"
	ColumnTitle     = "Test Case Description"
	ColumnDetails   = "Test Details"
	ColumnLogs      = "Logs"
)

// NotAvailable is the placeholder for identifying columns missing from a sheet
const NotAvailable = "N/A"

// TestRecord is one row of a penetration-test sheet.
// It is read-only once built by the record source.
type TestRecord struct {
	Interface string `json:"interface"`
	Title     string `json:"title"`
	Details   string `json:"details"`
	LogText   string `json:"log_text"`

	// SourceFile is the sheet the row came from, for logs only
	SourceFile string `json:"-"`
	// Row is the 1-based position in the concatenated record stream
	Row int `json:"-"`
}

// NewTestRecord builds a record from a column->value row.
// Missing or blank identifying columns fall back to "N/A", missing free-text columns to "".
// Identifying columns are folded onto one line.
func NewTestRecord(row map[string]string) TestRecord {
	return TestRecord{
		Interface: SingleLine(valueOr(row, ColumnInterface, NotAvailable)),
		Title:     SingleLine(valueOr(row, ColumnTitle, NotAvailable)),
		Details:   valueOr(row, ColumnDetails, ""),
		LogText:   valueOr(row, ColumnLogs, ""),
	}
}

func valueOr(row map[string]string, column, fallback string) string {
	v, ok := row[column]
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// SingleLine joins the non-blank lines of s with one space.
// Spreadsheet cells typed with Alt+Enter carry line breaks that would split a heading.
func SingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	parts := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// Verdict is the binary outcome of classifying one record
type Verdict string

const (
	// VerdictResisted - the component resisted the attack
	VerdictResisted Verdict = "SUCCESS"
	// VerdictVulnerable - the log shows a vulnerability (also the fail-safe default)
	VerdictVulnerable Verdict = "VULNERABILITY"
)

func (v Verdict) String() string {
	return string(v)
}
