package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/sirupsen/logrus"
)

// GenkitProvider - provider for hosted models (Gemini, OpenAI) through Genkit
type GenkitProvider struct {
	genkitApp   *genkit.Genkit
	log         logrus.FieldLogger
	name        string
	model       string
	modelName   string
	temperature float64
	middlewares []ai.ModelMiddleware
}

// GenkitConfig - configuration for the Genkit provider
type GenkitConfig struct {
	Provider    string // "gemini" or "openai"
	Model       string
	Temperature float64
	MaxAttempts int
	RetryDelay  time.Duration
}

// NewGenkitProvider creates a provider on top of an initialized Genkit app
func NewGenkitProvider(genkitApp *genkit.Genkit, log logrus.FieldLogger, cfg GenkitConfig) (*GenkitProvider, error) {
	if genkitApp == nil {
		return nil, fmt.Errorf("genkitApp cannot be nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("genkit provider requires a model")
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	log = log.WithField("component", "llm."+cfg.Provider)

	var middlewares []ai.ModelMiddleware
	if cfg.MaxAttempts > 1 {
		middlewares = append(middlewares, RetryMiddleware(log, cfg.MaxAttempts, cfg.RetryDelay))
	}

	return &GenkitProvider{
		genkitApp:   genkitApp,
		log:         log,
		name:        cfg.Provider,
		model:       cfg.Model,
		modelName:   genkitModelName(cfg.Provider, cfg.Model),
		temperature: cfg.Temperature,
		middlewares: middlewares,
	}, nil
}

// Complete generates plain text for the prompt
func (p *GenkitProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	// Messages rather than WithPrompt: logs may contain '%' and must reach the model verbatim
	resp, err := genkit.Generate(
		ctx,
		p.genkitApp,
		ai.WithModelName(p.modelName),
		ai.WithMessages(ai.NewUserTextMessage(prompt)),
		ai.WithConfig(&ai.GenerationCommonConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     p.temperature,
		}),
		ai.WithMiddleware(p.middlewares...),
	)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", p.name, err)
	}

	text := resp.Text()
	p.log.WithFields(logrus.Fields{
		"max_tokens": maxTokens,
		"chars":      len(text),
	}).Debug("completion received")

	return text, nil
}

func (p *GenkitProvider) GetName() string {
	return p.name
}

func (p *GenkitProvider) GetModel() string {
	return p.model
}
