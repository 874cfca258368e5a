package analyzer

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sabriallani/GenRapport/internal/llm"
)

// Aggregator writes the executive summary and the conclusion from the whole log corpus.
// Both are single-shot: a corpus larger than the backend context is sent as is.
type Aggregator struct {
	provider     llm.Provider
	log          logrus.FieldLogger
	maxTokens    int
	contextChars int
}

func NewAggregator(provider llm.Provider, log logrus.FieldLogger, maxTokens, contextChars int) *Aggregator {
	return &Aggregator{
		provider:     provider,
		log:          log.WithField("component", "aggregator"),
		maxTokens:    maxTokens,
		contextChars: contextChars,
	}
}

// Summarize returns the Summary Results and Conclusion texts for all logs
func (a *Aggregator) Summarize(ctx context.Context, logs []string) (summary, conclusion string, err error) {
	corpus := BuildCorpus(logs)
	if a.contextChars > 0 && len(corpus) > a.contextChars {
		a.log.WithFields(logrus.Fields{
			"corpus_chars":  len(corpus),
			"context_chars": a.contextChars,
		}).Warn("⚠️ aggregated logs exceed the configured context budget, the backend may truncate them")
	}

	summary, err = a.provider.Complete(ctx, BuildSummaryPrompt(corpus), a.maxTokens)
	if err != nil {
		return "", "", &InferenceError{Stage: StageSummary, Err: err}
	}

	conclusion, err = a.provider.Complete(ctx, BuildConclusionPrompt(corpus), a.maxTokens)
	if err != nil {
		return "", "", &InferenceError{Stage: StageConclusion, Err: err}
	}

	return strings.TrimSpace(summary), strings.TrimSpace(conclusion), nil
}
