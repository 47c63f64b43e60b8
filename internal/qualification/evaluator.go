package qualification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"registrum/internal/domain"
	"registrum/internal/llmjson"
	"registrum/internal/port"
	"registrum/internal/textutil"
)

const (
	justificationInvalidAnswer = "invalid evaluator answer"
	justificationUnavailable   = "evaluation unavailable"
	justificationCitationFmt   = "unverifiable evidence citation: %s"
	justificationMissingFmt    = "missing required document(s): %s"
)

// Evaluator answers analyzable checklist items from their evidence bundle.
type Evaluator struct {
	completer port.Completer
	logger    *zap.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(completer port.Completer, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{completer: completer, logger: logger}
}

// Bundle returns the usable documents whose confirmed type the item requires, in upload order.
func Bundle(item domain.ChecklistItem, docs []*domain.Document) []*domain.Document {
	required := make(map[domain.DocumentType]bool, len(item.RequiredTypes))
	for _, t := range item.RequiredTypes {
		required[t] = true
	}
	var bundle []*domain.Document
	for _, d := range docs {
		if d.Usable() && required[d.ConfirmedType] {
			bundle = append(bundle, d)
		}
	}
	return bundle
}

// NotAnalyzableVerdict is the verdict for an item whose required documents are absent.
func NotAnalyzableVerdict(r Resolution) domain.Verdict {
	names := make([]string, len(r.Missing))
	for i, t := range r.Missing {
		names[i] = string(t)
	}
	return notApplicable(r.Item, fmt.Sprintf(justificationMissingFmt, strings.Join(names, ", ")))
}

type evaluation struct {
	Answer         string    `json:"answer"`
	Justification  string    `json:"justification"`
	CitedFilenames citations `json:"cited_filenames"`
}

// citations accepts either a list of filenames or a single filename string.
type citations []string

func (c *citations) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if strings.TrimSpace(single) != "" {
		*c = citations{single}
	}
	return nil
}

// Evaluate produces the verdict for one analyzable item. It never fails:
// collaborator problems become NOT_APPLICABLE verdicts.
func (e *Evaluator) Evaluate(ctx context.Context, item domain.ChecklistItem, docs []*domain.Document) domain.Verdict {
	bundle := Bundle(item, docs)

	prompt, err := buildEvaluationPrompt(item, bundle)
	if err != nil {
		e.logger.Error("building evaluation prompt", zap.String("item", item.ID), zap.Error(err))
		return notApplicable(item, justificationUnavailable)
	}

	resp, err := e.completer.Complete(ctx, port.CompletionRequest{
		Task:       port.TaskEvaluate,
		Subject:    item.ID,
		System:     evaluationSystemPrompt,
		Prompt:     prompt,
		JSONOutput: true,
	})
	if err != nil {
		e.logger.Warn("evaluation call failed", zap.String("item", item.ID), zap.Error(err))
		return notApplicable(item, justificationUnavailable)
	}

	var ev evaluation
	if err := llmjson.Decode(resp.Text, &ev); err != nil {
		e.logger.Warn("discarding evaluation response",
			zap.String("item", item.ID),
			zap.String("response", textutil.Truncate(resp.Text, 200)),
			zap.Error(err))
		return notApplicable(item, justificationInvalidAnswer)
	}

	answer, ok := ParseAnswer(ev.Answer)
	if !ok {
		e.logger.Warn("unrecognized evaluator answer",
			zap.String("item", item.ID),
			zap.String("answer", ev.Answer))
		return notApplicable(item, justificationInvalidAnswer)
	}

	byName := make(map[string]*domain.Document, len(bundle))
	for _, d := range bundle {
		byName[d.Filename] = d
	}
	evidence := []uuid.UUID{}
	cited := make(map[uuid.UUID]bool)
	for _, name := range ev.CitedFilenames {
		name = strings.TrimSpace(name)
		d, ok := byName[name]
		if !ok {
			e.logger.Warn("rejecting evaluator verdict",
				zap.String("item", item.ID),
				zap.String("cited", name),
				zap.Error(domain.ErrEvidenceCitationMismatch))
			return notApplicable(item, fmt.Sprintf(justificationCitationFmt, name))
		}
		if !cited[d.ID] {
			cited[d.ID] = true
			evidence = append(evidence, d.ID)
		}
	}
	if len(evidence) == 0 && answer != domain.AnswerNotApplicable {
		for _, d := range bundle {
			evidence = append(evidence, d.ID)
		}
	}

	return domain.Verdict{
		ItemID:              item.ID,
		Category:            item.Category,
		Answer:              answer,
		Justification:       strings.TrimSpace(ev.Justification),
		EvidenceDocumentIDs: evidence,
	}
}

// ParseAnswer maps the collaborator's answer vocabulary onto domain answers.
func ParseAnswer(s string) (domain.Answer, bool) {
	token := strings.ToUpper(textutil.Fold(strings.TrimSpace(s)))
	token = strings.Trim(token, "\"'`*")
	switch token {
	case "YES", "SIM":
		return domain.AnswerYes, true
	case "NO", "NAO":
		return domain.AnswerNo, true
	case "N.A.", "N/A", "NA", "NOT_APPLICABLE", "NAO SE APLICA", "NAO_APLICAVEL":
		return domain.AnswerNotApplicable, true
	}
	return "", false
}

func notApplicable(item domain.ChecklistItem, justification string) domain.Verdict {
	return domain.Verdict{
		ItemID:              item.ID,
		Category:            item.Category,
		Answer:              domain.AnswerNotApplicable,
		Justification:       justification,
		EvidenceDocumentIDs: []uuid.UUID{},
	}
}

const evaluationSystemPrompt = "Você é um oficial de registro de imóveis fazendo a qualificação registral de um título. " +
	"Responda a pergunta do checklist usando somente os documentos fornecidos. " +
	"Responda APENAS com um objeto JSON no formato " +
	`{"answer": "SIM" | "NAO" | "N/A", "justification": "...", "cited_filenames": ["..."]}. ` +
	"Cite apenas nomes de arquivos que aparecem na lista de documentos."

type bundleEntry struct {
	Filename string                  `json:"filename"`
	Type     domain.DocumentType     `json:"type"`
	Fields   domain.ExtractionRecord `json:"fields"`
}

func buildEvaluationPrompt(item domain.ChecklistItem, bundle []*domain.Document) (string, error) {
	entries := make([]bundleEntry, len(bundle))
	for i, d := range bundle {
		entries[i] = bundleEntry{Filename: d.Filename, Type: d.ConfirmedType, Fields: d.Extraction}
	}
	docs, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Item %s (%s): %s\n\nDocumentos:\n%s", item.ID, item.Category, item.Question, docs), nil
}
