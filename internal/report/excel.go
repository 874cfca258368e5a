package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sabriallani/GenRapport/internal/models"
)

// Sheet names of the workbook artifact
const (
	SheetFindings   = "Detailed Findings"
	SheetSummary    = "Summary"
	SheetConclusion = "Conclusion"
)

// Header cells of the single-value sheets
const (
	HeaderSummary    = "Summary Results"
	HeaderConclusion = "Conclusion"
)

// ExcelRenderer writes one row per finding. Columns are the union of all finding keys
// in first-seen order; a finding without a column leaves the cell unset, while a field
// extracted with an empty value is written as an empty string.
type ExcelRenderer struct{}

func (e *ExcelRenderer) Format() Format {
	return FormatExcel
}

func (e *ExcelRenderer) Render(w io.Writer, r *models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetFindings); err != nil {
		return fmt.Errorf("name findings sheet: %w", err)
	}
	if err := writeFindingsSheet(f, r.Findings); err != nil {
		return err
	}

	if r.Aggregated {
		if err := writeSingleValueSheet(f, SheetSummary, HeaderSummary, r.Summary); err != nil {
			return err
		}
		if err := writeSingleValueSheet(f, SheetConclusion, HeaderConclusion, r.Conclusion); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeFindingsSheet(f *excelize.File, findings []models.Finding) error {
	columns := columnUnion(findings)

	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetFindings, "A1", &header); err != nil {
		return fmt.Errorf("write findings header: %w", err)
	}

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i + 1
	}

	for i, finding := range findings {
		for _, col := range finding.Columns() {
			cell, err := excelize.CoordinatesToCellName(index[col.Name], i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(SheetFindings, cell, col.Value); err != nil {
				return fmt.Errorf("write finding row %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func writeSingleValueSheet(f *excelize.File, sheet, header, value string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := f.SetCellValue(sheet, "A1", header); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", value); err != nil {
		return err
	}
	return nil
}

// columnUnion lists every column name once, in the order it is first met
func columnUnion(findings []models.Finding) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, finding := range findings {
		for _, col := range finding.Columns() {
			if seen[col.Name] {
				continue
			}
			seen[col.Name] = true
			columns = append(columns, col.Name)
		}
	}
	return columns
}
