package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sabriallani/GenRapport/internal/analyzer"
	"github.com/sabriallani/GenRapport/internal/config"
	"github.com/sabriallani/GenRapport/internal/llm"
	"github.com/sabriallani/GenRapport/internal/report"
	"github.com/sabriallani/GenRapport/internal/source"
)

// newProvider builds the inference backend; tests swap it for a scripted one
var newProvider = llm.NewProvider

type runOptions struct {
	configPath     string
	input          string
	output         string
	baseName       string
	provider       string
	model          string
	baseURL        string
	summary        bool
	decisionPolicy string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("genrap <%s>", strings.ReplaceAll(report.FormatList(), " ", "")),
		Short: "Generate a vulnerability report from penetration test logs",
		Long: `genrap reads penetration test sheets (.xlsx, .csv) from the data directory, asks an LLM
whether each test exposed a vulnerability, extracts a risk assessment for every vulnerable
test and writes one report in the chosen format.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: expected exactly one format (%s)", report.ErrUnsupportedFormat, report.FormatList())
			}
			_, err := report.ParseFormat(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			format, err := report.ParseFormat(args[0])
			if err != nil {
				return err
			}
			return runReport(cmd, opts, format)
		},
	}

	// main prints the error once
	cmd.SilenceErrors = true

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default $GENRAP_CONFIG)")
	flags.StringVar(&opts.input, "input", "", "directory holding the test sheets (default \"data\")")
	flags.StringVar(&opts.output, "output", "", "directory the report is written to (default \"generated_reports\")")
	flags.StringVar(&opts.baseName, "base-name", "", "report file name without extension (default \"vuln_report\")")
	flags.StringVar(&opts.provider, "provider", "", "LLM provider: openai, gemini, ollama, localai, lm-studio, llamacpp, custom")
	flags.StringVar(&opts.model, "model", "", "model name (provider default when empty)")
	flags.StringVar(&opts.baseURL, "base-url", "", "LLM server base URL")
	flags.BoolVar(&opts.summary, "summary", true, "include the executive summary and conclusion sections")
	flags.StringVar(&opts.decisionPolicy, "decision-policy", "", "classifier policy: contains or exact")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the json report format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(report.Schema(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func runReport(cmd *cobra.Command, opts *runOptions, format report.Format) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := newLogger(cfg.LogLevel, opts.verbose)
	log.WithField("config", cfg.String()).Debug("configuration loaded")

	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	records, err := source.NewDirSource(cfg.Paths.DataDir, log).Records(ctx)
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, log, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.WithFields(logrus.Fields{
		"provider": provider.GetName(),
		"model":    provider.GetModel(),
	}).Info("🤖 LLM provider ready")

	pipeline, err := analyzer.NewPipeline(provider, log, cfg.Pipeline)
	if err != nil {
		return err
	}

	r, err := pipeline.Run(ctx, records)
	if err != nil {
		return err
	}

	path := report.OutputPath(cfg.Paths.OutputDir, cfg.Paths.BaseName, format)
	if err := report.Write(path, renderer, r); err != nil {
		var werr *report.WriteError
		if errors.As(err, &werr) {
			// results are lost but the run itself completed
			log.WithError(werr.Err).WithField("path", werr.Path).Error("❌ failed to write report")
			return nil
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report generated: %s\n", path)
	printVerdictTable(out, r)
	return nil
}

// applyFlags overrides config values with flags the user set explicitly
func applyFlags(cmd *cobra.Command, opts *runOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Paths.DataDir = opts.input
	}
	if flags.Changed("output") {
		cfg.Paths.OutputDir = opts.output
	}
	if flags.Changed("base-name") {
		cfg.Paths.BaseName = opts.baseName
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = strings.ToLower(opts.provider)
	}
	if flags.Changed("model") {
		cfg.LLM.Model = opts.model
	}
	if flags.Changed("base-url") {
		cfg.LLM.BaseURL = opts.baseURL
	}
	if flags.Changed("summary") {
		cfg.Pipeline.Aggregate = opts.summary
	}
	if flags.Changed("decision-policy") {
		cfg.Pipeline.DecisionPolicy = strings.ToLower(opts.decisionPolicy)
	}
}

// newLogger writes to stderr so stdout only carries the run result
func newLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return log
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL '%s', defaulting to 'info'", level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
