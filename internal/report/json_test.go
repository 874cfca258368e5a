package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabriallani/GenRapport/internal/models"
)

func renderJSON(t *testing.T, r *models.Report) []byte {
	t.Helper()
	renderer, err := NewJSONRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(&buf, r))
	return buf.Bytes()
}

func TestJSONRenderer_Aggregated(t *testing.T) {
	out := renderJSON(t, fixtureReport(true))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "Two tests, one vulnerability.", doc["summary_results"])
	assert.Equal(t, "Fix the API first.", doc["conclusion"])

	findings := doc["detailed_findings"].([]interface{})
	require.Len(t, findings, 2)
	first := findings[0].(map[string]interface{})
	assert.Equal(t, "Login brute force", first["Test Name"])
	assert.Equal(t, models.ResilienceMessage, first["Message"])

	// two-space indentation, keys in column order
	assert.True(t, strings.HasPrefix(string(out), "{\n  \"summary_results\""))
	second := string(out[bytes.Index(out, []byte(`"SQL injection"`)):])
	assert.Less(t, strings.Index(second, `"Result"`), strings.Index(second, `"Risk Level"`))
	assert.Less(t, strings.Index(second, `"Risk Level"`), strings.Index(second, `"Description"`))
}

func TestJSONRenderer_MinimalHasNullSections(t *testing.T) {
	out := renderJSON(t, fixtureReport(false))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Contains(t, doc, "summary_results")
	assert.Nil(t, doc["summary_results"])
	assert.Contains(t, doc, "conclusion")
	assert.Nil(t, doc["conclusion"])
}

func TestJSONRenderer_EmptyFindingsIsArray(t *testing.T) {
	out := renderJSON(t, Build(nil))
	assert.Contains(t, string(out), `"detailed_findings": []`)
}

func TestSchema(t *testing.T) {
	s := Schema()
	require.NotNil(t, s.Properties)

	for _, key := range []string{"summary_results", "detailed_findings", "conclusion"} {
		_, ok := s.Properties.Get(key)
		assert.True(t, ok, key)
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Test Name"`)
	assert.Contains(t, string(data), `"VULNERABILITY"`)
}

func jsonTriples(t *testing.T, data []byte) []triple {
	t.Helper()
	var doc struct {
		DetailedFindings []map[string]string `json:"detailed_findings"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	var out []triple
	for _, f := range doc.DetailedFindings {
		test := f[models.KeyTestName]
		for k, v := range f {
			if k == models.KeyTestName {
				continue
			}
			out = append(out, triple{test, k, v})
		}
	}
	return out
}
