package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"registrum/internal/auditexport"
	"registrum/internal/catalog"
	"registrum/internal/domain"
	"registrum/internal/port"
)

const fetchConcurrency = 4

// QualifyInput is the DTO for a qualification request. Texts can be sent inline,
// referenced as object keys, or both; inline documents come first.
type QualifyInput struct {
	Documents []domain.TextInput `json:"documents"`
	Bucket    string             `json:"bucket"`
	Keys      []string           `json:"keys"`
}

// ExportOutput is a rendered audit export.
type ExportOutput struct {
	Result      *domain.QualificationResult
	Filename    string
	ContentType string
	Data        []byte
}

// ChecklistView is the public view of the requirement catalog.
type ChecklistView struct {
	Version string                 `json:"version"`
	Items   []domain.ChecklistItem `json:"items"`
}

// Engine runs a qualification over a document set.
type Engine interface {
	Run(ctx context.Context, inputs []domain.TextInput) (*domain.QualificationResult, error)
	Catalog() *catalog.Catalog
}

// QualificationService defines the qualification contract.
type QualificationService interface {
	Qualify(ctx context.Context, input QualifyInput) (*domain.QualificationResult, error)
	Export(ctx context.Context, input QualifyInput, format auditexport.Format) (*ExportOutput, error)
	Checklist() *ChecklistView
}

type qualificationService struct {
	engine  Engine
	texts   port.TextSource
	logger  *zap.Logger
	nowFunc func() time.Time
}

// NewQualificationService creates a new QualificationService. texts may be nil
// when no object storage is configured.
func NewQualificationService(engine Engine, texts port.TextSource, logger *zap.Logger) QualificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &qualificationService{
		engine:  engine,
		texts:   texts,
		logger:  logger,
		nowFunc: time.Now,
	}
}

func (s *qualificationService) Qualify(ctx context.Context, input QualifyInput) (*domain.QualificationResult, error) {
	inputs, err := s.collect(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.engine.Run(ctx, inputs)
}

func (s *qualificationService) Export(ctx context.Context, input QualifyInput, format auditexport.Format) (*ExportOutput, error) {
	result, err := s.Qualify(ctx, input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := auditexport.Write(&buf, format, result); err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}
	return &ExportOutput{
		Result:      result,
		Filename:    auditexport.BuildFilename(result.Status, format, s.nowFunc()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *qualificationService) Checklist() *ChecklistView {
	cat := s.engine.Catalog()
	return &ChecklistView{Version: cat.Version(), Items: cat.Items()}
}

// collect returns the inline documents followed by the fetched ones, in key order.
func (s *qualificationService) collect(ctx context.Context, input QualifyInput) ([]domain.TextInput, error) {
	if len(input.Keys) == 0 {
		return input.Documents, nil
	}
	if s.texts == nil {
		return nil, fmt.Errorf("%w: no object storage configured", domain.ErrTextSourceUnavailable)
	}

	fetched := make([]domain.TextInput, len(input.Keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range input.Keys {
		g.Go(func() error {
			in, err := s.texts.FetchText(gctx, input.Bucket, key)
			if err != nil {
				return err
			}
			fetched[i] = *in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("fetching document texts", zap.Int("keys", len(input.Keys)), zap.Error(err))
		return nil, err
	}

	out := make([]domain.TextInput, 0, len(input.Documents)+len(fetched))
	out = append(out, input.Documents...)
	return append(out, fetched...), nil
}
