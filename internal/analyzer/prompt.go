package analyzer

import (
	"fmt"
	"strings"

	"github.com/sabriallani/GenRapport/internal/models"
)

// Decision tokens the classifier prompt asks for
const (
	TokenResisted   = "SUCCESS"
	TokenVulnerable = "VULNERABILITY"
)

// CorpusSeparator joins raw logs into the aggregation corpus
const CorpusSeparator = "\n---\n"

// enrichmentChecklist is the field list the enrichment prompt asks for.
// The model is free to label and format them however it likes.
var enrichmentChecklist = []string{
	"CVSS",
	"Risk level",
	"Description",
	"Risks",
	"Complexity",
	"Priority",
	"CWE/CVE reference",
	"Reference URLs",
}

// BuildDecisionPrompt asks for a single-word verdict on one log
func BuildDecisionPrompt(rec models.TestRecord) string {
	return fmt.Sprintf(`You are a cybersecurity expert reviewing penetration test logs.
Determine if the log indicates a vulnerability or if the component resisted the attack.
Return only ONE word: %s or %s.

Log:
%s
`, TokenVulnerable, TokenResisted, rec.LogText)
}

// BuildEnrichmentPrompt asks for the risk assessment of a vulnerable record, one field per line
func BuildEnrichmentPrompt(rec models.TestRecord) string {
	var b strings.Builder
	b.WriteString("You are a cybersecurity analyst. Analyse the following penetration test log and produce ")
	b.WriteString("a vulnerability summary with the following fields, one field per line:\n\n")
	for _, field := range enrichmentChecklist {
		b.WriteString("- ")
		b.WriteString(field)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nInterface: %s\nTest Name: %s\nDetails: %s\nLogs: %s\n",
		rec.Interface, rec.Title, rec.Details, rec.LogText)
	return b.String()
}

// BuildSummaryPrompt asks for the executive Summary Results section over all logs
func BuildSummaryPrompt(corpus string) string {
	return `You are a senior penetration tester. Based on the following aggregated logs,
write a concise Summary Results section for an executive VAPT report. Mention:
- total number of vulnerabilities and their severities
- overall security level (Low, Moderate, High)
- 3-4 key observations

Aggregated Logs:
` + corpus
}

// BuildConclusionPrompt asks for the Conclusion section over all logs
func BuildConclusionPrompt(corpus string) string {
	return `You are a senior penetration tester. Draft the Conclusion section of the report:
- recap the assessment
- highlight the most critical weaknesses
- propose a remediation strategy (quick wins first, then long term)
- give 3 high-level recommendations

Aggregated Logs:
` + corpus
}

// BuildCorpus joins every non-empty log with CorpusSeparator
func BuildCorpus(logs []string) string {
	kept := make([]string, 0, len(logs))
	for _, l := range logs {
		if strings.TrimSpace(l) == "" {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, CorpusSeparator)
}
