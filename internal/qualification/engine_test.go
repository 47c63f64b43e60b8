package qualification_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"registrum/internal/catalog"
	"registrum/internal/domain"
	"registrum/internal/llm"
	"registrum/internal/metrics"
	"registrum/internal/port"
	"registrum/internal/qualification"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testCatalog = `
version: test-1
items:
  - id: item1
    category: PRENOTACAO
    question: A matrícula e a certidão de ônus foram apresentadas?
    requires: [MATRICULA, CERTIDAO]
  - id: item2
    category: TITULO
    question: O contrato identifica transmitentes e adquirentes?
    requires: [CONTRATO]
    mandatory: true
  - id: item3
    category: CONFERENCIA
    question: A descrição do imóvel confere com a matrícula?
    requires: [MATRICULA]
  - id: itemR1
    category: REGISTRO
    question: O título foi protocolado no livro 1?
`

var docText = strings.Repeat("Registro Geral de Imóveis. Matrícula 12.345, proprietária Ana Lima. ", 3)

// scriptedCompleter answers by task and subject, like a deterministic model would.
type scriptedCompleter struct {
	types   map[string]domain.DocumentType
	answers map[string]string
	block   map[string]bool
	onCall  func(req port.CompletionRequest)

	mu    sync.Mutex
	calls map[string]int
}

func (s *scriptedCompleter) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[string(req.Task)+":"+req.Subject]++
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall(req)
	}

	switch req.Task {
	case port.TaskClassify:
		return &port.CompletionResponse{Text: string(s.types[req.Subject])}, nil
	case port.TaskExtract:
		if s.block[req.Subject] {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &port.CompletionResponse{Text: `{"numero_matricula": "12345", "proprietarios": "Ana Lima", "transmitentes": "Ana Lima", "adquirentes": "Bruno Reis"}`}, nil
	case port.TaskEvaluate:
		if a, ok := s.answers[req.Subject]; ok {
			return &port.CompletionResponse{Text: a}, nil
		}
		return &port.CompletionResponse{Text: `{"answer": "SIM", "justification": "Conforme documentos.", "cited_filenames": []}`}, nil
	}
	return nil, context.DeadlineExceeded
}

func (s *scriptedCompleter) count(task port.Task, subject string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[string(task)+":"+subject]
}

func newEngine(t *testing.T, c port.Completer, cfg qualification.Config) *qualification.Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog), nil)
	require.NoError(t, err)
	if cfg.ApprovalThreshold == 0 {
		cfg.ApprovalThreshold = 80
	}
	if cfg.MinTextLength == 0 {
		cfg.MinTextLength = 50
	}
	e, err := qualification.NewEngine(cat, c, cfg, nil, nil)
	require.NoError(t, err)
	return e
}

func baseCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		types: map[string]domain.DocumentType{
			"matricula.pdf": domain.DocTypeMatricula,
			"contrato.pdf":  domain.DocTypeContrato,
		},
	}
}

func baseInputs() []domain.TextInput {
	return []domain.TextInput{
		{Filename: "matricula.pdf", Text: docText},
		{Filename: "contrato.pdf", Text: docText},
	}
}

func verdictFor(t *testing.T, r *domain.QualificationResult, id string) domain.Verdict {
	t.Helper()
	for _, v := range r.Verdicts {
		if v.ItemID == id {
			return v
		}
	}
	t.Fatalf("no verdict for %s", id)
	return domain.Verdict{}
}

func TestRun_MissingRequiredDocument(t *testing.T) {
	c := baseCompleter()
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	v := verdictFor(t, result, "item1")
	assert.Equal(t, domain.AnswerNotApplicable, v.Answer)
	assert.Equal(t, "missing required document(s): CERTIDAO", v.Justification)
	assert.Empty(t, v.EvidenceDocumentIDs)
	assert.Zero(t, c.count(port.TaskEvaluate, "item1"), "non-analyzable items are never sent")

	assert.Equal(t, domain.AnswerYes, verdictFor(t, result, "item2").Answer)
	assert.Equal(t, domain.AnswerYes, verdictFor(t, result, "item3").Answer)

	assert.Equal(t, domain.VerdictCounts{Yes: 3, NotApplicable: 1}, result.Counts)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, domain.StatusApproved, result.Status)
	assert.Equal(t, "test-1", result.CatalogVersion)
	assert.Equal(t, []domain.DocumentType{domain.DocTypeITBI, domain.DocTypeProcuracao, domain.DocTypeCND}, result.MissingDocuments)
	assert.Len(t, result.MissingComplementary, len(domain.ComplementaryDocumentTypes))
}

func TestRun_VerdictsFollowCatalogOrder(t *testing.T) {
	e := newEngine(t, baseCompleter(), qualification.Config{EvaluationConcurrency: 3})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	ids := make([]string, len(result.Verdicts))
	for i, v := range result.Verdicts {
		ids[i] = v.ItemID
	}
	assert.Equal(t, []string{"item1", "item2", "item3", "itemR1"}, ids)
}

func TestRun_EvidenceDefaultsToBundle(t *testing.T) {
	e := newEngine(t, baseCompleter(), qualification.Config{})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	matricula := result.Documents[0]
	require.Equal(t, "matricula.pdf", matricula.Filename)
	assert.Equal(t, domain.DocTypeMatricula, matricula.ConfirmedType)
	assert.Equal(t, []uuid.UUID{matricula.ID}, verdictFor(t, result, "item3").EvidenceDocumentIDs)
	assert.Empty(t, verdictFor(t, result, "itemR1").EvidenceDocumentIDs)
}

func TestRun_ExtractionTimeoutIsolatesDocument(t *testing.T) {
	inner := baseCompleter()
	inner.block = map[string]bool{"matricula.pdf": true}
	c := llm.NewRetryCompleter(inner, llm.RetryPolicy{
		CallTimeout: 20 * time.Millisecond,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
	}, nil)
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.count(port.TaskExtract, "matricula.pdf"))
	assert.True(t, result.Documents[0].ExtractionError)
	assert.False(t, result.Documents[1].ExtractionError)

	for _, id := range []string{"item1", "item3"} {
		v := verdictFor(t, result, id)
		assert.Equal(t, domain.AnswerNotApplicable, v.Answer, id)
		assert.Contains(t, v.Justification, "MATRICULA", id)
	}
	assert.Equal(t, domain.AnswerYes, verdictFor(t, result, "item2").Answer)
	assert.Equal(t, domain.AnswerYes, verdictFor(t, result, "itemR1").Answer)
}

func TestRun_DeterministicResult(t *testing.T) {
	e := newEngine(t, baseCompleter(), qualification.Config{DocumentConcurrency: 2, EvaluationConcurrency: 4})

	first, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)
	second, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_EmptyRequirementsWithNoDocuments(t *testing.T) {
	c := baseCompleter()
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, c.count(port.TaskEvaluate, "itemR1"))
	assert.Equal(t, domain.AnswerYes, verdictFor(t, result, "itemR1").Answer)
	assert.Equal(t, domain.VerdictCounts{Yes: 1, NotApplicable: 3}, result.Counts)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, domain.StatusPending, result.Status, "mandatory item2 is not applicable")
	assert.Empty(t, result.Documents)
	assert.Len(t, result.MissingDocuments, len(domain.MandatoryDocumentTypes))
}

func TestRun_MandatoryNoRejects(t *testing.T) {
	c := baseCompleter()
	c.answers = map[string]string{
		"item2": `{"answer": "NÃO", "justification": "Adquirente sem CPF.", "cited_filenames": ["contrato.pdf"]}`,
	}
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, result.Status)
	assert.Equal(t, 67, result.Score)
	v := verdictFor(t, result, "item2")
	assert.Equal(t, domain.AnswerNo, v.Answer)
	assert.Equal(t, []uuid.UUID{result.Documents[1].ID}, v.EvidenceDocumentIDs)
}

func TestRun_MandatoryOverride(t *testing.T) {
	c := baseCompleter()
	c.answers = map[string]string{
		"item2": `{"answer": "NAO", "justification": "x", "cited_filenames": []}`,
	}
	e := newEngine(t, c, qualification.Config{MandatoryItems: []string{"item3"}})

	result, err := e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, result.Status, "item2 is no longer mandatory; 67 is below threshold")
	item, ok := e.Catalog().Item("item3")
	require.True(t, ok)
	assert.True(t, item.Mandatory)
}

func TestNewEngine_UnknownMandatoryItem(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog), nil)
	require.NoError(t, err)

	_, err = qualification.NewEngine(cat, baseCompleter(), qualification.Config{MandatoryItems: []string{"item99"}}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrCatalogMisconfigured)
}

func TestRun_InvalidInput(t *testing.T) {
	e := newEngine(t, baseCompleter(), qualification.Config{})

	_, err := e.Run(context.Background(), []domain.TextInput{{Filename: "  ", Text: docText}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Run(context.Background(), []domain.TextInput{
		{Filename: "a.pdf", Text: docText},
		{Filename: "a.pdf", Text: docText},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateFilename)
}

func TestRun_CanceledDuringDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := baseCompleter()
	c.block = map[string]bool{"contrato.pdf": true}
	c.onCall = func(req port.CompletionRequest) {
		if req.Task == port.TaskExtract && req.Subject == "contrato.pdf" {
			cancel()
		}
	}
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(ctx, baseInputs())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Zero(t, c.count(port.TaskEvaluate, "item2"), "no evaluation after cancellation")
}

func TestRun_CanceledDuringEvaluation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := baseCompleter()
	c.onCall = func(req port.CompletionRequest) {
		if req.Task == port.TaskEvaluate {
			cancel()
		}
	}
	e := newEngine(t, c, qualification.Config{})

	result, err := e.Run(ctx, baseInputs())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRun_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cat, err := catalog.Parse([]byte(testCatalog), nil)
	require.NoError(t, err)
	e, err := qualification.NewEngine(cat, baseCompleter(), qualification.Config{ApprovalThreshold: 80, MinTextLength: 50}, m, nil)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), baseInputs())
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Outcomes.WithLabelValues(string(domain.StatusApproved))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Verdicts.WithLabelValues(string(domain.CategoryTitulo), string(domain.AnswerYes))))
}
