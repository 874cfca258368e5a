package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sabriallani/GenRapport/internal/models"
)

// MarkdownRenderer writes the report as Markdown: numbered sections, bullet fields, rules between findings
type MarkdownRenderer struct{}

func (m *MarkdownRenderer) Format() Format {
	return FormatMarkdown
}

func (m *MarkdownRenderer) Render(w io.Writer, r *models.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n\n", r.Title)

	if r.Aggregated {
		fmt.Fprintf(bw, "## %s\n", sectionSummary)
		fmt.Fprintf(bw, "%s\n\n---\n\n", r.Summary)
	}

	fmt.Fprintf(bw, "## %s\n", sectionFindings)
	for i, finding := range r.Findings {
		fmt.Fprintf(bw, "### %s\n", findingHeading(i+1, finding))
		for _, e := range finding.Entries() {
			fmt.Fprintf(bw, "- **%s**: %s\n", e.Name, e.Value)
		}
		fmt.Fprintf(bw, "\n---\n\n")
	}

	if r.Aggregated {
		fmt.Fprintf(bw, "## %s\n", sectionConclusion)
		fmt.Fprintf(bw, "%s\n", r.Conclusion)
	}

	return bw.Flush()
}
