package analyzer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabriallani/GenRapport/internal/config"
	"github.com/sabriallani/GenRapport/internal/models"
	"github.com/sabriallani/GenRapport/internal/report"
)

type providerCall struct {
	prompt    string
	maxTokens int
}

// fakeProvider answers through a scripted function and records every call
type fakeProvider struct {
	mu    sync.Mutex
	reply func(prompt string) (string, error)
	calls []providerCall
}

func (f *fakeProvider) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, providerCall{prompt: prompt, maxTokens: maxTokens})
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeProvider) GetName() string  { return "fake" }
func (f *fakeProvider) GetModel() string { return "fake-model" }

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testPipelineConfig(aggregate bool) config.PipelineConfig {
	cfg := config.Default().Pipeline
	cfg.Aggregate = aggregate
	return cfg
}

func isDecision(prompt string) bool {
	return strings.Contains(prompt, "Return only ONE word")
}

func isEnrichment(prompt string) bool {
	return strings.Contains(prompt, "vulnerability summary with the following fields")
}

// scenarioProvider scripts the three-record scenario: a resisted login, an SQL injection with
// two extracted fields and a record without logs the model cannot judge
func scenarioProvider() *fakeProvider {
	return &fakeProvider{reply: func(prompt string) (string, error) {
		switch {
		case isDecision(prompt) && strings.Contains(prompt, "connection refused"):
			return "SUCCESS", nil
		case isDecision(prompt) && strings.Contains(prompt, "SQL error: syntax"):
			return "VULNERABILITY", nil
		case isDecision(prompt):
			return "I need the log to decide", nil
		case isEnrichment(prompt) && strings.Contains(prompt, "Test Name: SQL injection"):
			return "CVSS: 7.5\nRisk level: High", nil
		case isEnrichment(prompt):
			return "Risk level: Unknown", nil
		case strings.Contains(prompt, "Summary Results section"):
			return "One of three tests is vulnerable.", nil
		default:
			return "Fix input validation.", nil
		}
	}}
}

func scenarioRecords() []models.TestRecord {
	rows := []map[string]string{
		{"Interface": "Web", "Test Case Description": "Login brute force", "Logs": "connection refused"},
		{"Interface": "API", "Test Case Description": "SQL injection", "Test Details": "id param", "Logs": "SQL error: syntax"},
		{"Interface": "Web", "Test Case Description": "Open redirect"},
	}
	records := make([]models.TestRecord, len(rows))
	for i, row := range rows {
		records[i] = models.NewTestRecord(row)
		records[i].Row = i + 1
	}
	return records
}

func TestPipeline_EndToEndMarkdown(t *testing.T) {
	provider := scenarioProvider()
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(false))
	require.NoError(t, err)

	r, err := p.Run(context.Background(), scenarioRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, (&report.MarkdownRenderer{}).Render(&buf, r))

	want := "# 📄 VAPT Auto-Generated Vulnerability Report\n\n" +
		"## 3. Detailed Findings\n" +
		"### 3.1 Login brute force\n" +
		"- **Interface**: Web\n" +
		"- **Result**: SUCCESS\n" +
		"- **Message**: The system is resilient. No vulnerability found.\n" +
		"\n---\n\n" +
		"### 3.2 SQL injection\n" +
		"- **Interface**: API\n" +
		"- **Result**: VULNERABILITY\n" +
		"- **CVSS**: 7.5\n" +
		"- **Risk level**: High\n" +
		"\n---\n\n" +
		"### 3.3 Open redirect\n" +
		"- **Interface**: Web\n" +
		"- **Result**: VULNERABILITY\n" +
		"- **Risk level**: Unknown\n" +
		"\n---\n\n"
	assert.Equal(t, want, buf.String())

	// the record without a Logs column is still classified, on an empty log
	assert.Contains(t, provider.calls[3].prompt, "Log:\n\n")
}

func TestPipeline_AggregatesBeforeRecords(t *testing.T) {
	provider := scenarioProvider()
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(true))
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	r, err := p.Run(context.Background(), scenarioRecords())
	require.NoError(t, err)

	assert.True(t, r.Aggregated)
	assert.Equal(t, "One of three tests is vulnerable.", r.Summary)
	assert.Equal(t, "Fix input validation.", r.Conclusion)
	assert.Equal(t, at, r.GeneratedAt)
	assert.NotEmpty(t, r.RunID)

	// summary, conclusion, then decision/enrichment per record
	require.Len(t, provider.calls, 7)
	assert.Contains(t, provider.calls[0].prompt, "Summary Results section")
	assert.Contains(t, provider.calls[1].prompt, "Conclusion section")
	assert.True(t, strings.HasSuffix(provider.calls[0].prompt, "connection refused\n---\nSQL error: syntax"))
	assert.True(t, isDecision(provider.calls[2].prompt))

	resisted, vulnerable := r.VerdictCounts()
	assert.Equal(t, 1, resisted)
	assert.Equal(t, 2, vulnerable)
}

func TestPipeline_MinimalSkipsAggregation(t *testing.T) {
	provider := scenarioProvider()
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(false))
	require.NoError(t, err)

	r, err := p.Run(context.Background(), scenarioRecords())
	require.NoError(t, err)

	assert.False(t, r.Aggregated)
	// 3 decisions + 2 enrichments
	assert.Len(t, provider.calls, 5)
	for _, call := range provider.calls {
		assert.True(t, isDecision(call.prompt) || isEnrichment(call.prompt))
	}
}

func TestPipeline_ResistedRecordsSkipEnrichment(t *testing.T) {
	provider := &fakeProvider{reply: func(prompt string) (string, error) {
		require.False(t, isEnrichment(prompt), "enrichment must not run for resisted records")
		return "SUCCESS", nil
	}}
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(false))
	require.NoError(t, err)

	r, err := p.Run(context.Background(), scenarioRecords())
	require.NoError(t, err)
	for _, f := range r.Findings {
		assert.Equal(t, models.VerdictResisted, f.Result)
		assert.Empty(t, f.Fields)
	}
}

func TestPipeline_PreservesSourceOrder(t *testing.T) {
	var records []models.TestRecord
	for i := 0; i < 20; i++ {
		records = append(records, models.TestRecord{
			Interface: "Web",
			Title:     "test-" + string(rune('a'+i)),
			LogText:   "log",
			Row:       i + 1,
		})
	}
	provider := &fakeProvider{reply: func(prompt string) (string, error) {
		if isDecision(prompt) {
			return "VULNERABILITY", nil
		}
		return "CVSS: 5.0", nil
	}}
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(false))
	require.NoError(t, err)

	r, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, r.Findings, len(records))
	for i, f := range r.Findings {
		assert.Equal(t, records[i].Title, f.TestName)
	}
}

func TestPipeline_InferenceErrorAbortsRun(t *testing.T) {
	provider := &fakeProvider{reply: func(prompt string) (string, error) {
		if isEnrichment(prompt) {
			return "", assert.AnError
		}
		if strings.Contains(prompt, "connection refused") {
			return "SUCCESS", nil
		}
		return "VULNERABILITY", nil
	}}
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(false))
	require.NoError(t, err)

	r, err := p.Run(context.Background(), scenarioRecords())
	assert.Nil(t, r)

	var inf *InferenceError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, StageExtract, inf.Stage)
	assert.Equal(t, 2, inf.Row)
	// nothing after the failing record is attempted
	assert.Len(t, provider.calls, 3)
}

func TestPipeline_AggregationErrorAbortsBeforeRecords(t *testing.T) {
	provider := &fakeProvider{reply: func(string) (string, error) { return "", assert.AnError }}
	p, err := NewPipeline(provider, testLogger(), testPipelineConfig(true))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), scenarioRecords())

	var inf *InferenceError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, StageSummary, inf.Stage)
	assert.Len(t, provider.calls, 1)
}

func TestNewPipeline_UnknownPolicy(t *testing.T) {
	cfg := testPipelineConfig(false)
	cfg.DecisionPolicy = "fuzzy"

	_, err := NewPipeline(&fakeProvider{}, testLogger(), cfg)
	assert.Error(t, err)
}
