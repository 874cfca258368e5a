package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Genkit Initialization
// ═══════════════════════════════════════════════════════════════════════════════

// InitGenkitApp initializes a Genkit app with the plugin for the given provider.
// Supports: gemini, openai
func InitGenkitApp(ctx context.Context, provider, apiKey, baseURL string) (*genkit.Genkit, error) {
	switch provider {
	case "gemini":
		return genkit.Init(
			ctx, genkit.WithPlugins(
				&googlegenai.GoogleAI{
					APIKey: apiKey,
				},
			),
		), nil

	case "openai":
		return genkit.Init(
			ctx, genkit.WithPlugins(
				&compat_oai.OpenAICompatible{
					Provider: provider,
					APIKey:   apiKey,
					BaseURL:  baseURL,
				},
			),
		), nil

	default:
		return nil, fmt.Errorf("unsupported genkit provider: %s", provider)
	}
}

// genkitModelName maps a provider and model to the name genkit registers it under
func genkitModelName(provider, model string) string {
	if provider == "gemini" {
		return "googleai/" + model
	}
	return provider + "/" + model
}

// ═══════════════════════════════════════════════════════════════════════════════
// Prompt helpers
// ═══════════════════════════════════════════════════════════════════════════════

// WrapInstruction wraps a prompt in the [INST] markers instruction-tuned local models expect
func WrapInstruction(prompt string) string {
	return "[INST] " + strings.TrimSpace(prompt) + " [/INST]"
}

// TruncateString truncates a string to at most maxLen bytes with "..." suffix if needed.
// The cut never splits a multi-byte rune.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}
