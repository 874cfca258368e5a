package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sabriallani/GenRapport/internal/models"
)

// Format is an output report format
type Format string

const (
	FormatDocx     Format = "docx"
	FormatExcel    Format = "excel"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Formats lists every supported format in CLI order
var Formats = []Format{FormatDocx, FormatExcel, FormatJSON, FormatMarkdown}

// ErrUnsupportedFormat is the usage error for an unknown format selector
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Section titles shared by the document renderers
const (
	sectionSummary    = "2. Summary Results"
	sectionFindings   = "3. Detailed Findings"
	sectionConclusion = "4. Conclusion"
)

// ParseFormat maps a CLI token to a Format
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (choose %s)", ErrUnsupportedFormat, s, FormatList())
}

// FormatList renders the supported formats as "docx | excel | json | md"
func FormatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, " | ")
}

// Extension returns the artifact file extension, dot excluded
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// OutputPath builds the deterministic artifact path for a run
func OutputPath(dir, baseName string, f Format) string {
	return filepath.Join(dir, baseName+"."+f.Extension())
}

// Renderer serializes a report into one artifact format.
// Every renderer enumerates the same (test name, field, value) triples; only the encoding differs.
type Renderer interface {
	Render(w io.Writer, r *models.Report) error
	Format() Format
}

// NewRenderer returns the renderer for a format
func NewRenderer(f Format) (Renderer, error) {
	switch f {
	case FormatDocx:
		return &DocxRenderer{}, nil
	case FormatExcel:
		return &ExcelRenderer{}, nil
	case FormatJSON:
		return NewJSONRenderer()
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// findingHeading is the stable sub-section id "3.<n> <test name>", n 1-based
func findingHeading(n int, f models.Finding) string {
	return fmt.Sprintf("3.%d %s", n, f.TestName)
}
