package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GenericProvider - universal provider for any HTTP completion API
// Supports several request formats (OpenAI-compatible, Ollama, llama.cpp server, raw)
type GenericProvider struct {
	client      *http.Client
	log         logrus.FieldLogger
	name        string
	model       string
	baseURL     string
	apiKey      string // optional
	format      APIFormat
	temperature float64
	maxAttempts int
	retryDelay  time.Duration
}

// APIFormat selects the request/response shape
type APIFormat string

const (
	// FormatOpenAI - OpenAI compatible API (LocalAI, LM Studio, vLLM with OpenAI endpoint, etc.)
	FormatOpenAI APIFormat = "openai"

	// FormatOllama - Ollama API
	FormatOllama APIFormat = "ollama"

	// FormatLlamaCpp - llama.cpp server /completion endpoint serving a local GGUF model
	FormatLlamaCpp APIFormat = "llamacpp"

	// FormatRaw - plain JSON {"prompt": "...", "max_tokens": ...}
	FormatRaw APIFormat = "raw"
)

// GenericConfig - configuration for the generic provider
type GenericConfig struct {
	Name        string    // provider name (for logging)
	Model       string    // model name
	BaseURL     string    // base URL (e.g. "http://localhost:11434")
	APIKey      string    // API key (optional)
	Format      APIFormat // API format
	Temperature float64
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// NewGenericProvider creates a new universal HTTP provider
func NewGenericProvider(log logrus.FieldLogger, cfg GenericConfig) *GenericProvider {
	if cfg.Name == "" {
		cfg.Name = "generic"
	}
	if cfg.Format == "" {
		cfg.Format = FormatOpenAI
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute // local models can be slow
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &GenericProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log:         log.WithField("component", "llm."+cfg.Name),
		name:        cfg.Name,
		model:       cfg.Model,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		format:      cfg.Format,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
	}
}

// Complete sends the prompt over HTTP and returns the completion text
func (p *GenericProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var content string
	err := withRetry(ctx, p.log, p.maxAttempts, p.retryDelay, func() error {
		var err error
		content, err = p.complete(ctx, prompt, maxTokens)
		return err
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (p *GenericProvider) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	httpReq, err := p.buildHTTPRequest(ctx, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", httpResp.StatusCode, TruncateString(string(body), 500))
	}

	content, err := p.parseResponse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"max_tokens": maxTokens,
		"chars":      len(content),
	}).Debug("completion received")

	return content, nil
}

// buildHTTPRequest creates the HTTP request for the configured API format
func (p *GenericProvider) buildHTTPRequest(ctx context.Context, prompt string, maxTokens int) (*http.Request, error) {
	var requestBody interface{}
	var endpoint string

	switch p.format {
	case FormatOpenAI:
		endpoint = p.baseURL + "/chat/completions"
		requestBody = map[string]interface{}{
			"model": p.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": p.temperature,
			"max_tokens":  maxTokens,
		}

	case FormatOllama:
		endpoint = p.baseURL + "/api/generate"
		requestBody = map[string]interface{}{
			"model":  p.model,
			"prompt": prompt,
			"stream": false,
			"options": map[string]interface{}{
				"temperature": p.temperature,
				"num_predict": maxTokens,
			},
		}

	case FormatLlamaCpp:
		// Instruction-tuned GGUF models expect the [INST] wrapper
		endpoint = p.baseURL + "/completion"
		requestBody = map[string]interface{}{
			"prompt":      WrapInstruction(prompt),
			"n_predict":   maxTokens,
			"temperature": p.temperature,
			"stream":      false,
		}

	case FormatRaw:
		endpoint = p.baseURL
		requestBody = map[string]interface{}{
			"prompt":      prompt,
			"temperature": p.temperature,
			"max_tokens":  maxTokens,
		}

	default:
		return nil, fmt.Errorf("unsupported API format: %s", p.format)
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	return req, nil
}

// parseResponse extracts the completion text for the configured API format
func (p *GenericProvider) parseResponse(body []byte) (string, error) {
	switch p.format {
	case FormatOpenAI:
		// OpenAI returns: {"choices": [{"message": {"content": "..."}}]}
		var resp struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to parse OpenAI response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Message.Content, nil

	case FormatOllama:
		// Ollama returns: {"response": "..."}
		var resp struct {
			Response *string `json:"response"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to parse Ollama response: %w", err)
		}
		if resp.Response == nil {
			return "", fmt.Errorf("no response field in Ollama reply")
		}
		return *resp.Response, nil

	case FormatLlamaCpp:
		// llama.cpp server returns: {"content": "...", "stop": true, ...}
		var resp struct {
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to parse llama.cpp response: %w", err)
		}
		if resp.Content == nil {
			return "", fmt.Errorf("no content field in llama.cpp reply")
		}
		return *resp.Content, nil

	case FormatRaw:
		// Try the usual single-field shapes in turn
		var resp map[string]interface{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to parse raw response: %w", err)
		}
		for _, key := range []string{"text", "response", "content"} {
			if s, ok := resp[key].(string); ok && s != "" {
				return s, nil
			}
		}
		return "", fmt.Errorf("unknown response format: %s", TruncateString(string(body), 500))

	default:
		return "", fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *GenericProvider) GetName() string {
	return p.name
}

func (p *GenericProvider) GetModel() string {
	return p.model
}
