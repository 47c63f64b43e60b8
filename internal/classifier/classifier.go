// Package classifier assigns a document type to each uploaded text: a filename
// heuristic declares a type and the text-generation collaborator confirms or
// corrects it from an excerpt of the content.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"registrum/internal/domain"
	"registrum/internal/llmjson"
	"registrum/internal/port"
	"registrum/internal/textutil"
)

// FilenameRule maps filename keywords to a document type.
type FilenameRule struct {
	Type     domain.DocumentType
	Patterns []string
}

// DefaultRules are evaluated in order; the first rule with a matching pattern wins.
// More specific certificates come before the generic CERTIDAO rule.
var DefaultRules = []FilenameRule{
	{domain.DocTypeProcuracao, []string{"procuracao", "procur"}},
	{domain.DocTypeITBI, []string{"itbi"}},
	{domain.DocTypeCND, []string{"cnd", "negativa_debito", "negativa_de_debito"}},
	{domain.DocTypeCertidaoSimplificada, []string{"simplificada", "junta"}},
	{domain.DocTypeDeclaracaoPrimeiraAquisicao, []string{"primeira_aquisicao", "1a_aquisicao"}},
	{domain.DocTypeAforamento, []string{"aforamento", "cat_", "foro"}},
	{domain.DocTypeBoletimCadastro, []string{"boletim", "cadastro"}},
	{domain.DocTypeMinuta, []string{"minuta"}},
	{domain.DocTypeCertidao, []string{"certidao", "onus", "inteiro_teor"}},
	{domain.DocTypeMatricula, []string{"matricula", "mat_"}},
	{domain.DocTypeContrato, []string{"contrato", "escritura", "compra_venda"}},
}

// Config tunes the classifier.
type Config struct {
	ExcerptLength int
	Rules         []FilenameRule
}

// Classifier implements the two-step classification. It never returns an error:
// any collaborator problem falls back to the filename heuristic.
type Classifier struct {
	completer     port.Completer
	rules         []FilenameRule
	excerptLength int
	logger        *zap.Logger
}

// New creates a Classifier. Zero config values take the defaults.
func New(completer port.Completer, cfg Config, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = 2000
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules
	}
	return &Classifier{
		completer:     completer,
		rules:         cfg.Rules,
		excerptLength: cfg.ExcerptLength,
		logger:        logger,
	}
}

// NormalizeFilename folds accents, lower-cases and turns separators into underscores,
// so "Certidão-ITBI 2024.pdf" becomes "certidao_itbi_2024_pdf".
func NormalizeFilename(name string) string {
	s := strings.ToLower(textutil.Fold(name))
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(s)
}

// Declare applies the filename heuristic.
func (c *Classifier) Declare(filename string) domain.DocumentType {
	name := NormalizeFilename(filename)
	for _, rule := range c.rules {
		for _, p := range rule.Patterns {
			if strings.Contains(name, p) {
				return rule.Type
			}
		}
	}
	return domain.DocTypeUnknown
}

// Classify returns the declared type and the confirmed type for one document.
func (c *Classifier) Classify(ctx context.Context, filename, text string) (declared, confirmed domain.DocumentType) {
	declared = c.Declare(filename)

	excerpt := textutil.Excerpt(textutil.CollapseWhitespace(text), c.excerptLength)
	if excerpt == "" {
		return declared, declared
	}

	resp, err := c.completer.Complete(ctx, port.CompletionRequest{
		Task:      port.TaskClassify,
		Subject:   filename,
		System:    systemPrompt,
		Prompt:    buildPrompt(filename, declared, excerpt),
		MaxTokens: 32,
	})
	if err != nil {
		c.logger.Warn("keeping filename classification",
			zap.String("filename", filename),
			zap.String("declared", string(declared)),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)))
		return declared, declared
	}

	parsed, ok := ParseAnswer(resp.Text)
	if !ok {
		c.logger.Warn("unrecognized classification answer",
			zap.String("filename", filename),
			zap.String("answer", textutil.Truncate(resp.Text, 80)))
		return declared, declared
	}
	if parsed != declared {
		c.logger.Info("classification corrected",
			zap.String("filename", filename),
			zap.String("declared", string(declared)),
			zap.String("confirmed", string(parsed)))
	}
	return declared, parsed
}

// ParseAnswer normalizes a collaborator answer into a document type. The answer
// must name exactly one known type (or alias), bare or as {"type": "..."}.
func ParseAnswer(text string) (domain.DocumentType, bool) {
	s := llmjson.StripFences(text)
	if strings.HasPrefix(s, "{") {
		var obj struct {
			Type string `json:"type"`
		}
		if err := llmjson.Decode(s, &obj); err != nil {
			return "", false
		}
		s = obj.Type
	}

	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Trim(strings.TrimSpace(s), "\"'`*.")
	s = strings.ToUpper(textutil.Fold(strings.TrimSpace(s)))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "" {
		return "", false
	}
	return domain.ParseDocumentType(s)
}
