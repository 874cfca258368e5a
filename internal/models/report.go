package models

import "time"

// DefaultReportTitle heads every rendered report
const DefaultReportTitle = "📄 VAPT Auto-Generated Vulnerability Report"

// Report is the canonical in-memory report handed to exactly one renderer per run
type Report struct {
	Title string

	// Summary and Conclusion are only meaningful when Aggregated is set.
	// The minimal pipeline variant leaves both empty and Aggregated false.
	Summary    string
	Conclusion string
	Aggregated bool

	// Findings in source row order
	Findings []Finding

	RunID       string
	GeneratedAt time.Time
}

// VerdictCounts returns how many findings resisted and how many are vulnerable
func (r *Report) VerdictCounts() (resisted, vulnerable int) {
	for _, f := range r.Findings {
		if f.Vulnerable() {
			vulnerable++
		} else {
			resisted++
		}
	}
	return resisted, vulnerable
}
