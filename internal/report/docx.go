package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/sabriallani/GenRapport/internal/models"
)

// DocxRenderer writes a Word document: numbered headings and a Key/Value table per finding
type DocxRenderer struct{}

func (d *DocxRenderer) Format() Format {
	return FormatDocx
}

func (d *DocxRenderer) Render(w io.Writer, r *models.Report) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if _, err := doc.AddHeading(r.Title, 0); err != nil {
		return fmt.Errorf("add title: %w", err)
	}

	if r.Aggregated {
		if err := addSection(doc, sectionSummary, r.Summary); err != nil {
			return err
		}
	}

	if _, err := doc.AddHeading(sectionFindings, 1); err != nil {
		return fmt.Errorf("add findings heading: %w", err)
	}
	for i, finding := range r.Findings {
		if _, err := doc.AddHeading(findingHeading(i+1, finding), 2); err != nil {
			return fmt.Errorf("add finding heading: %w", err)
		}
		addFindingTable(doc, finding)
		doc.AddParagraph("")
	}

	if r.Aggregated {
		if err := addSection(doc, sectionConclusion, r.Conclusion); err != nil {
			return err
		}
	}

	return saveDocument(doc, w)
}

func addSection(doc *docx.RootDoc, title, body string) error {
	if _, err := doc.AddHeading(title, 1); err != nil {
		return fmt.Errorf("add %q heading: %w", title, err)
	}
	doc.AddParagraph(body)
	return nil
}

func addFindingTable(doc *docx.RootDoc, finding models.Finding) {
	table := doc.AddTable()
	table.Style("TableGrid")

	header := table.AddRow()
	header.AddCell().AddParagraph("Key")
	header.AddCell().AddParagraph("Value")

	for _, e := range finding.Entries() {
		row := table.AddRow()
		row.AddCell().AddParagraph(e.Name)
		row.AddCell().AddParagraph(e.Value)
	}
}

// saveDocument packages the document through a scratch file, the library only saves to paths
func saveDocument(doc *docx.RootDoc, w io.Writer) error {
	tmp, err := os.CreateTemp("", "genrap-*.docx")
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopen document: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy document: %w", err)
	}
	return nil
}
