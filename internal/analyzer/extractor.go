package analyzer

import (
	"context"
	"strings"

	"github.com/sabriallani/GenRapport/internal/llm"
	"github.com/sabriallani/GenRapport/internal/models"
)

// Extractor turns the free-text risk assessment of a vulnerable record into fields
type Extractor struct {
	provider  llm.Provider
	maxTokens int
}

func NewExtractor(provider llm.Provider, maxTokens int) *Extractor {
	return &Extractor{
		provider:  provider,
		maxTokens: maxTokens,
	}
}

// Extract asks for the enrichment checklist and parses the answer with ParseFields
func (e *Extractor) Extract(ctx context.Context, rec models.TestRecord) (models.Fields, error) {
	completion, err := e.provider.Complete(ctx, BuildEnrichmentPrompt(rec), e.maxTokens)
	if err != nil {
		return nil, &InferenceError{Stage: StageExtract, Row: rec.Row, Err: err}
	}
	return ParseFields(completion), nil
}

// ParseFields splits a completion into name/value pairs, one per colon-bearing line.
//
// The name is the trimmed text before the first colon and the value the trimmed text after it.
// Lines without a colon are dropped. This is lossy by construction: a wrapped paragraph loses
// its continuation lines, a bare URL line becomes name "https", and names keep whatever casing,
// numbering or markup the model produced. A repeated name overwrites the earlier value.
func ParseFields(completion string) models.Fields {
	fields := models.Fields{}
	for _, line := range strings.Split(completion, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return fields
}
