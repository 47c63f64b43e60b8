// Package qualification runs the qualification pipeline over one document set:
// classification and extraction per document, analyzability resolution,
// per-item evaluation and aggregation into a scored, auditable result.
package qualification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"registrum/internal/catalog"
	"registrum/internal/classifier"
	"registrum/internal/domain"
	"registrum/internal/extractor"
	"registrum/internal/metrics"
	"registrum/internal/port"
)

// documentNamespace seeds the deterministic document IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:registrum:document"))

// Config holds the engine settings.
type Config struct {
	DocumentConcurrency   int
	EvaluationConcurrency int
	ApprovalThreshold     int
	// MandatoryItems overrides the catalog's mandatory flags when non-empty.
	MandatoryItems []string
	ExcerptLength  int
	MinTextLength  int
}

// Engine is safe for concurrent use; each Run works on its own document set.
type Engine struct {
	catalog    *catalog.Catalog
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
	evaluator  *Evaluator
	mandatory  map[string]bool
	cfg        Config
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewEngine creates an Engine over cat using completer for every collaborator call.
func NewEngine(cat *catalog.Catalog, completer port.Completer, cfg Config, m *metrics.Metrics, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DocumentConcurrency <= 0 {
		cfg.DocumentConcurrency = 4
	}
	if cfg.EvaluationConcurrency <= 0 {
		cfg.EvaluationConcurrency = 8
	}
	cat, err := cat.WithMandatory(cfg.MandatoryItems)
	if err != nil {
		return nil, err
	}
	return &Engine{
		catalog:    cat,
		classifier: classifier.New(completer, classifier.Config{ExcerptLength: cfg.ExcerptLength}, logger.Named("classifier")),
		extractor:  extractor.New(completer, extractor.Config{MinTextLength: cfg.MinTextLength}, logger.Named("extractor")),
		evaluator:  NewEvaluator(completer, logger.Named("evaluator")),
		mandatory:  MandatorySet(cat.Items()),
		cfg:        cfg,
		metrics:    m,
		logger:     logger,
	}, nil
}

// Catalog returns the catalog the engine evaluates, with effective mandatory flags.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Run qualifies one document set. Per-document and per-item failures are
// absorbed into the result; Run only fails on invalid input or cancellation.
func (e *Engine) Run(ctx context.Context, inputs []domain.TextInput) (*domain.QualificationResult, error) {
	start := time.Now()

	docs, err := newDocuments(inputs)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.DocumentConcurrency)
	for _, doc := range docs {
		g.Go(func() error {
			e.processDocument(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	present := PresentTypes(docs)
	resolutions := Resolve(e.catalog.Items(), present)
	verdicts := make([]domain.Verdict, len(resolutions))

	var eg errgroup.Group
	eg.SetLimit(e.cfg.EvaluationConcurrency)
	for i, r := range resolutions {
		if !r.Analyzable() {
			verdicts[i] = NotAnalyzableVerdict(r)
			continue
		}
		eg.Go(func() error {
			verdicts[i] = e.evaluator.Evaluate(ctx, r.Item, docs)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := AggregateVerdicts(verdicts, e.mandatory, e.cfg.ApprovalThreshold)
	missing, complementary := MissingDocumentClasses(present)

	result := &domain.QualificationResult{
		CatalogVersion:       e.catalog.Version(),
		Status:               agg.Status,
		Score:                agg.Score,
		Counts:               agg.Counts,
		Verdicts:             verdicts,
		Documents:            summarize(docs),
		MissingDocuments:     missing,
		MissingComplementary: complementary,
	}
	e.record(result, time.Since(start))
	return result, nil
}

func (e *Engine) processDocument(ctx context.Context, doc *domain.Document) {
	doc.DeclaredType, doc.ConfirmedType = e.classifier.Classify(ctx, doc.Filename, doc.RawText)
	doc.Extraction, doc.ExtractionError = e.extractor.Extract(ctx, doc.Filename, doc.ConfirmedType, doc.RawText)
}

func (e *Engine) record(result *domain.QualificationResult, elapsed time.Duration) {
	for _, d := range result.Documents {
		e.metrics.IncrementDocument(string(d.ConfirmedType), d.ExtractionError)
	}
	for _, v := range result.Verdicts {
		e.metrics.IncrementVerdict(string(v.Category), string(v.Answer))
	}
	e.metrics.IncrementOutcome(string(result.Status))
	e.metrics.ObserveRunLatency(elapsed)

	e.logger.Info("qualification finished",
		zap.String("status", string(result.Status)),
		zap.Int("score", result.Score),
		zap.Int("documents", len(result.Documents)),
		zap.Int("yes", result.Counts.Yes),
		zap.Int("no", result.Counts.No),
		zap.Int("not_applicable", result.Counts.NotApplicable),
		zap.Duration("elapsed", elapsed))
}

// newDocuments validates the inputs and assigns deterministic IDs.
func newDocuments(inputs []domain.TextInput) ([]*domain.Document, error) {
	seen := make(map[string]bool, len(inputs))
	docs := make([]*domain.Document, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Filename)
		if name == "" {
			return nil, fmt.Errorf("%w: document %d has no filename", domain.ErrInvalidInput, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateFilename, name)
		}
		seen[name] = true
		docs = append(docs, &domain.Document{
			ID:       uuid.NewSHA1(documentNamespace, []byte(fmt.Sprintf("%d:%s", i, name))),
			Filename: name,
			RawText:  in.Text,
		})
	}
	return docs, nil
}

func summarize(docs []*domain.Document) []domain.DocumentSummary {
	out := make([]domain.DocumentSummary, len(docs))
	for i, d := range docs {
		out[i] = domain.DocumentSummary{
			ID:              d.ID,
			Filename:        d.Filename,
			DeclaredType:    d.DeclaredType,
			ConfirmedType:   d.ConfirmedType,
			ExtractionError: d.ExtractionError,
		}
	}
	return out
}
