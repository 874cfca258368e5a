package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabriallani/GenRapport/internal/models"
)

// docxBody is the flattened text content of word/document.xml
type docxBody struct {
	paragraphs []string     // top-level paragraphs, tables excluded
	tables     [][][]string // table -> row -> cell text
	// heading preceding each table
	tableHeadings []string
}

func readDocx(t *testing.T, data []byte) docxBody {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var raw []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err = io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
	}
	require.NotEmpty(t, raw, "word/document.xml missing")

	var (
		body      docxBody
		inTable   int
		text      strings.Builder
		inText    bool
		row       []string
		lastPara  string
		tableRows [][]string
	)
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				inTable++
				tableRows = nil
			case "tr":
				row = nil
			case "tc", "p":
				if el.Name.Local == "tc" || inTable == 0 {
					text.Reset()
				}
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText {
				text.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "tc":
				row = append(row, text.String())
			case "tr":
				tableRows = append(tableRows, row)
			case "tbl":
				inTable--
				body.tables = append(body.tables, tableRows)
				body.tableHeadings = append(body.tableHeadings, lastPara)
			case "p":
				if inTable == 0 {
					if s := text.String(); s != "" {
						body.paragraphs = append(body.paragraphs, s)
						lastPara = s
					}
				}
			}
		}
	}
	return body
}

func renderDocx(t *testing.T, r *models.Report) docxBody {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&DocxRenderer{}).Render(&buf, r))
	return readDocx(t, buf.Bytes())
}

func TestDocxRenderer_Aggregated(t *testing.T) {
	body := renderDocx(t, fixtureReport(true))

	assert.Equal(t, []string{
		models.DefaultReportTitle,
		"2. Summary Results",
		"Two tests, one vulnerability.",
		"3. Detailed Findings",
		"3.1 Login brute force",
		"3.2 SQL injection",
		"4. Conclusion",
		"Fix the API first.",
	}, body.paragraphs)

	require.Len(t, body.tables, 2)
	assert.Equal(t, [][]string{
		{"Key", "Value"},
		{"Interface", "Web"},
		{"Result", "SUCCESS"},
		{"Message", models.ResilienceMessage},
	}, body.tables[0])
	assert.Equal(t, []string{"Risk Level", "High"}, body.tables[1][3])
	assert.Equal(t, []string{"3.1 Login brute force", "3.2 SQL injection"}, body.tableHeadings)
}

func TestDocxRenderer_MinimalSkipsAggregateSections(t *testing.T) {
	body := renderDocx(t, fixtureReport(false))

	assert.NotContains(t, body.paragraphs, "2. Summary Results")
	assert.NotContains(t, body.paragraphs, "4. Conclusion")
	assert.Contains(t, body.paragraphs, "3. Detailed Findings")
}

func docxTriples(t *testing.T, data []byte) []triple {
	t.Helper()
	body := readDocx(t, data)

	var out []triple
	for i, table := range body.tables {
		test := stripHeadingNumber(body.tableHeadings[i])
		// first row is the Key/Value header
		for _, row := range table[1:] {
			require.Len(t, row, 2)
			out = append(out, triple{test, row[0], row[1]})
		}
	}
	return out
}
