package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sabriallani/GenRapport/internal/config"
	"github.com/sabriallani/GenRapport/internal/llm"
	"github.com/sabriallani/GenRapport/internal/models"
	"github.com/sabriallani/GenRapport/internal/report"
)

// Pipeline classifies, enriches and aggregates test records into a report.
// Records are processed one at a time in source order; the first error aborts the run.
type Pipeline struct {
	classifier *Classifier
	extractor  *Extractor
	// nil in the minimal variant (no summary/conclusion)
	aggregator *Aggregator

	log logrus.FieldLogger
	now func() time.Time
}

// NewPipeline wires the pipeline components around one provider
func NewPipeline(provider llm.Provider, log logrus.FieldLogger, cfg config.PipelineConfig) (*Pipeline, error) {
	policy, err := PolicyByName(cfg.DecisionPolicy)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		classifier: NewClassifier(provider, policy, cfg.DecisionMaxTokens),
		extractor:  NewExtractor(provider, cfg.EnrichMaxTokens),
		log:        log.WithField("component", "pipeline"),
		now:        time.Now,
	}
	if cfg.Aggregate {
		p.aggregator = NewAggregator(provider, log, cfg.AggregateMaxTokens, cfg.ContextChars)
	}
	return p, nil
}

// Run processes every record and returns the assembled report
func (p *Pipeline) Run(ctx context.Context, records []models.TestRecord) (*models.Report, error) {
	runID := uuid.New().String()
	log := p.log.WithField("run_id", runID)
	log.WithFields(logrus.Fields{
		"records":   len(records),
		"aggregate": p.aggregator != nil,
	}).Info("🚀 starting report pipeline")

	opts := []report.Option{
		report.WithRunID(runID),
		report.WithGeneratedAt(p.now()),
		report.WithLogger(log),
	}

	if p.aggregator != nil {
		logs := make([]string, len(records))
		for i, rec := range records {
			logs[i] = rec.LogText
		}

		log.Info("📝 generating summary and conclusion")
		summary, conclusion, err := p.aggregator.Summarize(ctx, logs)
		if err != nil {
			return nil, err
		}
		opts = append(opts, report.WithAggregate(summary, conclusion))
	}

	findings := make([]models.Finding, 0, len(records))
	for i, rec := range records {
		finding, err := p.processRecord(ctx, rec)
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)

		log.WithFields(logrus.Fields{
			"record": fmt.Sprintf("%d/%d", i+1, len(records)),
			"source": rec.SourceFile,
			"test":   rec.Title,
			"result": finding.Result,
			"fields": finding.Fields.Len(),
		}).Info("🔍 record classified")
	}

	return report.Build(findings, opts...), nil
}

func (p *Pipeline) processRecord(ctx context.Context, rec models.TestRecord) (models.Finding, error) {
	verdict, err := p.classifier.Classify(ctx, rec)
	if err != nil {
		return models.Finding{}, err
	}

	if verdict == models.VerdictResisted {
		return models.NewResistedFinding(rec), nil
	}

	fields, err := p.extractor.Extract(ctx, rec)
	if err != nil {
		return models.Finding{}, err
	}
	if fields.Len() == 0 {
		p.log.WithField("test", rec.Title).Warn("⚠️ enrichment answer had no 'name: value' lines")
	}
	return models.NewVulnerableFinding(rec, fields), nil
}
