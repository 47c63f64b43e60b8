// Package extractor turns a classified document's text into a normalized
// attribute record using the type's extraction template.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"registrum/internal/domain"
	"registrum/internal/llmjson"
	"registrum/internal/port"
	"registrum/internal/textutil"
)

// Config tunes the extractor.
type Config struct {
	// MinTextLength is the shortest text, in runes, worth sending for extraction.
	MinTextLength int
	Templates     map[domain.DocumentType]Template
}

// Extractor calls the collaborator once per document and never returns an error:
// unusable responses mark the document as failed instead.
type Extractor struct {
	completer     port.Completer
	templates     map[domain.DocumentType]Template
	minTextLength int
	logger        *zap.Logger
}

// New creates an Extractor.
func New(completer port.Completer, cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Templates == nil {
		cfg.Templates = DefaultTemplates
	}
	return &Extractor{
		completer:     completer,
		templates:     cfg.Templates,
		minTextLength: cfg.MinTextLength,
		logger:        logger,
	}
}

// Template returns the extraction template for t.
func (e *Extractor) Template(t domain.DocumentType) (Template, bool) {
	tmpl, ok := e.templates[t]
	return tmpl, ok
}

// Extract returns the record for one document and whether extraction failed.
// Documents without a template yield an empty, non-failed record.
func (e *Extractor) Extract(ctx context.Context, filename string, docType domain.DocumentType, text string) (domain.ExtractionRecord, bool) {
	tmpl, ok := e.templates[docType]
	if !ok {
		return domain.ExtractionRecord{}, false
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < e.minTextLength {
		e.logger.Warn("text too short for extraction",
			zap.String("filename", filename),
			zap.Int("min_length", e.minTextLength))
		return domain.ExtractionRecord{}, true
	}

	resp, err := e.completer.Complete(ctx, port.CompletionRequest{
		Task:       port.TaskExtract,
		Subject:    filename,
		System:     systemPrompt,
		Prompt:     buildPrompt(tmpl, text),
		JSONOutput: true,
	})
	if err != nil {
		e.logger.Warn("extraction call failed",
			zap.String("filename", filename),
			zap.String("type", string(docType)),
			zap.Error(err))
		return domain.ExtractionRecord{}, true
	}

	var raw map[string]any
	if err := llmjson.Decode(resp.Text, &raw); err != nil {
		e.logger.Warn("discarding extraction response",
			zap.String("filename", filename),
			zap.String("type", string(docType)),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrExtractionMalformed, err)))
		return domain.ExtractionRecord{}, true
	}
	return Normalize(tmpl, raw), false
}

// Normalize projects raw onto the template's keys. Unknown keys are dropped and
// missing keys are set to "".
func Normalize(tmpl Template, raw map[string]any) domain.ExtractionRecord {
	record := make(domain.ExtractionRecord)
	for _, key := range tmpl.Keys() {
		record[key] = stringify(raw[key])
	}
	return record
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "Sim"
		}
		return "Não"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

const systemPrompt = "Você extrai dados estruturados de documentos de registro de imóveis. " +
	"Responda APENAS com um objeto JSON válido, sem explicações. Todos os valores devem ser strings. " +
	"Se um campo não for encontrado, use string vazia (\"\"). Nunca invente valores."

func buildPrompt(tmpl Template, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extraia os seguintes campos do texto de %s abaixo.\n", tmpl.Subject)
	for _, g := range tmpl.Groups {
		b.WriteString(g.Name)
		b.WriteString(":\n")
		for _, f := range g.Fields {
			fmt.Fprintf(&b, "- %s: %s\n", f.Key, f.Description)
		}
	}
	b.WriteString("\nTexto do documento:\n")
	b.WriteString(textutil.CollapseWhitespace(text))
	return b.String()
}
