package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Decision policies for reducing the classifier completion
const (
	PolicyContains = "contains"
	PolicyExact    = "exact"
)

// Config is built once at startup and passed down explicitly
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LogLevel string         `yaml:"log_level"`
}

type PathsConfig struct {
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
	BaseName  string `yaml:"base_name"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	ApiKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type PipelineConfig struct {
	// Aggregate enables the executive summary and conclusion sections
	Aggregate          bool   `yaml:"aggregate"`
	DecisionPolicy     string `yaml:"decision_policy"`
	DecisionMaxTokens  int    `yaml:"decision_max_tokens"`
	EnrichMaxTokens    int    `yaml:"enrich_max_tokens"`
	AggregateMaxTokens int    `yaml:"aggregate_max_tokens"`
	// ContextChars is the corpus size above which the aggregator warns
	ContextChars int `yaml:"context_chars"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "generated_reports",
			BaseName:  "vuln_report",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0.2,
			Timeout:     2 * time.Minute,
			MaxAttempts: 1,
		},
		Pipeline: PipelineConfig{
			Aggregate:          true,
			DecisionPolicy:     PolicyContains,
			DecisionMaxTokens:  4,
			EnrichMaxTokens:    512,
			AggregateMaxTokens: 512,
			ContextChars:       8000,
		},
		LogLevel: "info",
	}
}

// Load reads configuration in order: defaults, optional YAML file, environment (.env included).
// An empty path falls back to GENRAP_CONFIG; no path means no file.
func Load(path string) (*Config, error) {
	// It's okay if .env doesn't exist
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("GENRAP_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Paths.DataDir = getEnv("DATA_DIR", c.Paths.DataDir)
	c.Paths.OutputDir = getEnv("OUTPUT_DIR", c.Paths.OutputDir)
	c.Paths.BaseName = getEnv("REPORT_BASE_NAME", c.Paths.BaseName)

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_URL", c.LLM.BaseURL)
	c.LLM.ApiKey = getEnv("API_KEY", c.LLM.ApiKey)

	c.Pipeline.DecisionPolicy = strings.ToLower(getEnv("DECISION_POLICY", c.Pipeline.DecisionPolicy))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.LLM.Temperature, err = getEnvFloat("LLM_TEMPERATURE", c.LLM.Temperature); err != nil {
		return err
	}
	if c.LLM.Timeout, err = getEnvDuration("LLM_TIMEOUT", c.LLM.Timeout); err != nil {
		return err
	}
	if c.LLM.MaxAttempts, err = getEnvInt("LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts); err != nil {
		return err
	}
	if c.Pipeline.Aggregate, err = getEnvBool("REPORT_SUMMARY", c.Pipeline.Aggregate); err != nil {
		return err
	}
	if c.Pipeline.DecisionMaxTokens, err = getEnvInt("DECISION_MAX_TOKENS", c.Pipeline.DecisionMaxTokens); err != nil {
		return err
	}
	if c.Pipeline.EnrichMaxTokens, err = getEnvInt("ENRICH_MAX_TOKENS", c.Pipeline.EnrichMaxTokens); err != nil {
		return err
	}
	if c.Pipeline.AggregateMaxTokens, err = getEnvInt("AGGREGATE_MAX_TOKENS", c.Pipeline.AggregateMaxTokens); err != nil {
		return err
	}
	if c.Pipeline.ContextChars, err = getEnvInt("LLM_CONTEXT_CHARS", c.Pipeline.ContextChars); err != nil {
		return err
	}
	return nil
}

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini", "ollama", "localai", "lm-studio", "llamacpp":
	case "custom":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM provider %q needs a base URL", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %q", c.LLM.Provider)
	}

	switch c.Pipeline.DecisionPolicy {
	case PolicyContains, PolicyExact:
	default:
		return fmt.Errorf("unsupported decision policy: %q", c.Pipeline.DecisionPolicy)
	}

	budgets := map[string]int{
		"decision_max_tokens":  c.Pipeline.DecisionMaxTokens,
		"enrich_max_tokens":    c.Pipeline.EnrichMaxTokens,
		"aggregate_max_tokens": c.Pipeline.AggregateMaxTokens,
		"max_attempts":         c.LLM.MaxAttempts,
	}
	for name, v := range budgets {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}

	if c.Paths.BaseName == "" {
		return fmt.Errorf("report base name cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func (c *Config) String() string {
	keyDisplay := "(not set)"
	if c.LLM.ApiKey != "" {
		keyDisplay = "********"
	}

	modelDisplay := c.LLM.Model
	if modelDisplay == "" {
		modelDisplay = "(provider default)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
Data dir:          %s
Output dir:        %s
Report base name:  %s
LLM provider:      %s
LLM model:         %s
LLM URL:           %s
API key:           %s
Summary sections:  %t
Decision policy:   %s`,
		c.Paths.DataDir,
		c.Paths.OutputDir,
		c.Paths.BaseName,
		c.LLM.Provider,
		modelDisplay,
		c.LLM.BaseURL,
		keyDisplay,
		c.Pipeline.Aggregate,
		c.Pipeline.DecisionPolicy,
	)
}
