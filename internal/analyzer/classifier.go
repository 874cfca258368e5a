package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sabriallani/GenRapport/internal/config"
	"github.com/sabriallani/GenRapport/internal/llm"
	"github.com/sabriallani/GenRapport/internal/models"
)

// DecisionPolicy reduces a normalized (trimmed, uppercased) completion to "resisted or not"
type DecisionPolicy func(normalized string) bool

// ContainsPolicy treats any completion mentioning the resisted token as RESISTED
func ContainsPolicy(normalized string) bool {
	return strings.Contains(normalized, TokenResisted)
}

// ExactPolicy requires the completion to be the resisted token and nothing else
func ExactPolicy(normalized string) bool {
	return normalized == TokenResisted
}

// PolicyByName maps a configured policy name to its DecisionPolicy
func PolicyByName(name string) (DecisionPolicy, error) {
	switch name {
	case config.PolicyContains, "":
		return ContainsPolicy, nil
	case config.PolicyExact:
		return ExactPolicy, nil
	default:
		return nil, fmt.Errorf("unsupported decision policy: %q", name)
	}
}

// Classifier decides whether a record shows a vulnerability.
// Anything the policy does not recognise as resisted is VULNERABLE: an ambiguous
// answer must never hide a potential finding.
type Classifier struct {
	provider  llm.Provider
	policy    DecisionPolicy
	maxTokens int
}

// NewClassifier creates a classifier. A nil policy means ContainsPolicy.
func NewClassifier(provider llm.Provider, policy DecisionPolicy, maxTokens int) *Classifier {
	if policy == nil {
		policy = ContainsPolicy
	}
	return &Classifier{
		provider:  provider,
		policy:    policy,
		maxTokens: maxTokens,
	}
}

// Classify returns the verdict for one record. Backend failures are not retried here.
func (c *Classifier) Classify(ctx context.Context, rec models.TestRecord) (models.Verdict, error) {
	completion, err := c.provider.Complete(ctx, BuildDecisionPrompt(rec), c.maxTokens)
	if err != nil {
		return "", &InferenceError{Stage: StageClassify, Row: rec.Row, Err: err}
	}
	return c.Reduce(completion), nil
}

// Reduce maps a raw completion to a verdict
func (c *Classifier) Reduce(completion string) models.Verdict {
	normalized := strings.ToUpper(strings.TrimSpace(completion))
	if c.policy(normalized) {
		return models.VerdictResisted
	}
	return models.VerdictVulnerable
}
