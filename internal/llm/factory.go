package llm

import (
	"context"
	"fmt"

	"github.com/sabriallani/GenRapport/internal/config"
	"github.com/sirupsen/logrus"
)

// ProviderType - provider type
type ProviderType string

const (
	ProviderTypeOpenAI   ProviderType = "openai"
	ProviderTypeGemini   ProviderType = "gemini"
	ProviderTypeOllama   ProviderType = "ollama"
	ProviderTypeLocalAI  ProviderType = "localai"
	ProviderTypeLMStudio ProviderType = "lm-studio"
	ProviderTypeLlamaCpp ProviderType = "llamacpp"
	// ProviderTypeCustom posts plain JSON to a self-hosted endpoint, see FormatRaw
	ProviderTypeCustom ProviderType = "custom"
)

// Built-in defaults per provider, used when no model/URL is configured
var providerDefaults = map[ProviderType]struct {
	model   string
	baseURL string
}{
	ProviderTypeOpenAI:   {model: "gpt-4-turbo", baseURL: "https://api.openai.com/v1"},
	ProviderTypeGemini:   {model: "gemini-1.5-pro"},
	ProviderTypeOllama:   {model: "llama3.1:8b", baseURL: "http://localhost:11434"},
	ProviderTypeLocalAI:  {model: "gpt-4", baseURL: "http://localhost:8080/v1"},
	ProviderTypeLMStudio: {model: "llama-3.2-3b", baseURL: "http://localhost:1234/v1"},
	ProviderTypeLlamaCpp: {model: "openhermes-2.5-mistral-7b.Q5_K_M.gguf", baseURL: "http://localhost:8080"},
	ProviderTypeCustom:   {model: "default"},
}

// NewProvider creates a provider from the LLM configuration.
// Hosted APIs go through Genkit; local model servers through the generic HTTP provider.
func NewProvider(ctx context.Context, log logrus.FieldLogger, cfg config.LLMConfig) (Provider, error) {
	typ := ProviderType(cfg.Provider)
	defaults, ok := providerDefaults[typ]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}

	model := cfg.Model
	if model == "" {
		model = defaults.model
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaults.baseURL
	}

	switch typ {
	case ProviderTypeOpenAI, ProviderTypeGemini:
		g, err := InitGenkitApp(ctx, cfg.Provider, cfg.ApiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return NewGenkitProvider(g, log, GenkitConfig{
			Provider:    cfg.Provider,
			Model:       model,
			Temperature: cfg.Temperature,
			MaxAttempts: cfg.MaxAttempts,
		})

	case ProviderTypeOllama:
		return newLocalProvider(log, cfg, string(typ), model, baseURL, FormatOllama), nil

	case ProviderTypeLocalAI, ProviderTypeLMStudio:
		return newLocalProvider(log, cfg, string(typ), model, baseURL, FormatOpenAI), nil

	case ProviderTypeLlamaCpp:
		return newLocalProvider(log, cfg, string(typ), model, baseURL, FormatLlamaCpp), nil

	case ProviderTypeCustom:
		if baseURL == "" {
			return nil, fmt.Errorf("provider %s requires a base URL", cfg.Provider)
		}
		return newLocalProvider(log, cfg, string(typ), model, baseURL, FormatRaw), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

func newLocalProvider(
	log logrus.FieldLogger,
	cfg config.LLMConfig,
	name, model, baseURL string,
	format APIFormat,
) *GenericProvider {
	return NewGenericProvider(log, GenericConfig{
		Name:        name,
		Model:       model,
		BaseURL:     baseURL,
		APIKey:      cfg.ApiKey,
		Format:      format,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
	})
}
