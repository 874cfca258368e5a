package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	invschema "github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonschema"

	"github.com/sabriallani/GenRapport/internal/models"
)

// jsonDocument is the top-level JSON artifact.
// Summary and conclusion are null when the run was not aggregated.
type jsonDocument struct {
	SummaryResults   *string          `json:"summary_results" jsonschema:"oneof_type=string;null"`
	DetailedFindings []models.Finding `json:"detailed_findings"`
	Conclusion       *string          `json:"conclusion" jsonschema:"oneof_type=string;null"`
}

// Schema returns the JSON Schema of the JSON report artifact
func Schema() *invschema.Schema {
	r := &invschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&jsonDocument{})
	s.Title = "Vulnerability report"
	s.Description = "Per-test findings with optional summary and conclusion"
	return s
}

// JSONRenderer writes the report as indented JSON and validates it against Schema before returning
type JSONRenderer struct {
	schema *jsonschema.Schema
}

func NewJSONRenderer() (*JSONRenderer, error) {
	s := Schema()
	// compile without the meta-schema reference, validation only needs the shape
	s.Version = ""
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal report schema: %w", err)
	}

	compiled, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	return &JSONRenderer{schema: compiled}, nil
}

func (j *JSONRenderer) Format() Format {
	return FormatJSON
}

func (j *JSONRenderer) Render(w io.Writer, r *models.Report) error {
	doc := jsonDocument{DetailedFindings: r.Findings}
	if doc.DetailedFindings == nil {
		doc.DetailedFindings = []models.Finding{}
	}
	if r.Aggregated {
		summary, conclusion := r.Summary, r.Conclusion
		doc.SummaryResults = &summary
		doc.Conclusion = &conclusion
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	if result := j.schema.ValidateJSON(buf.Bytes()); !result.IsValid() {
		return fmt.Errorf("json report does not match schema: %v", result.Errors)
	}

	_, err := w.Write(buf.Bytes())
	return err
}
