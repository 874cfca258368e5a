package report

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabriallani/GenRapport/internal/models"
)

type buildOptions struct {
	title       string
	summary     string
	conclusion  string
	aggregated  bool
	runID       string
	generatedAt time.Time
	log         logrus.FieldLogger
}

// Option customizes Build
type Option func(*buildOptions)

// WithAggregate attaches the summary and conclusion sections
func WithAggregate(summary, conclusion string) Option {
	return func(o *buildOptions) {
		o.summary = summary
		o.conclusion = conclusion
		o.aggregated = true
	}
}

func WithTitle(title string) Option {
	return func(o *buildOptions) { o.title = title }
}

func WithRunID(id string) Option {
	return func(o *buildOptions) { o.runID = id }
}

func WithGeneratedAt(t time.Time) Option {
	return func(o *buildOptions) { o.generatedAt = t }
}

// WithLogger receives warnings about fields dropped at the boundary
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *buildOptions) { o.log = log }
}

// Build assembles the canonical report. Findings keep their order.
//
// Interface, test name and field entries are folded onto one line, since markdown headings and
// bullets end at a line break. Extracted field names are model output, so they are checked here before any renderer sees them:
// empty names and names that collide with the fixed keys (Interface, Test Name, Result, Message)
// are dropped, otherwise a spreadsheet column or JSON key would be ambiguous.
func Build(findings []models.Finding, opts ...Option) *models.Report {
	o := buildOptions{title: models.DefaultReportTitle}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.log = discard
	}

	built := make([]models.Finding, len(findings))
	for i, f := range findings {
		built[i] = sanitize(f, o.log)
	}

	return &models.Report{
		Title:       o.title,
		Summary:     o.summary,
		Conclusion:  o.conclusion,
		Aggregated:  o.aggregated,
		Findings:    built,
		RunID:       o.runID,
		GeneratedAt: o.generatedAt,
	}
}

func sanitize(f models.Finding, log logrus.FieldLogger) models.Finding {
	f.Interface = models.SingleLine(f.Interface)
	f.TestName = models.SingleLine(f.TestName)
	if len(f.Fields) == 0 {
		return f
	}

	kept := make(models.Fields, 0, len(f.Fields))
	for _, field := range f.Fields {
		field.Name = models.SingleLine(field.Name)
		field.Value = models.SingleLine(field.Value)
		if field.Name == "" || models.IsReservedKey(field.Name) {
			log.WithFields(logrus.Fields{
				"test":  f.TestName,
				"field": field.Name,
			}).Warn("dropping extracted field with empty or reserved name")
			continue
		}
		kept = append(kept, field)
	}
	f.Fields = kept
	return f
}
