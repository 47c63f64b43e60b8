package classifier_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"registrum/internal/classifier"
	"registrum/internal/domain"
	"registrum/internal/port"
	"registrum/mocks"
)

func TestNormalizeFilename(t *testing.T) {
	assert.Equal(t, "certidao_itbi_2024_pdf", classifier.NormalizeFilename("Certidão-ITBI 2024.pdf"))
}

func TestDeclare(t *testing.T) {
	c := classifier.New(new(mocks.MockCompleter), classifier.Config{}, nil)

	tests := []struct {
		filename string
		want     domain.DocumentType
	}{
		{"matricula.pdf", domain.DocTypeMatricula},
		{"MATRÍCULA 12345.pdf", domain.DocTypeMatricula},
		{"contrato.pdf", domain.DocTypeContrato},
		{"Escritura de Compra e Venda.pdf", domain.DocTypeContrato},
		{"certidao_itbi.pdf", domain.DocTypeITBI},
		{"Certidão de Ônus.pdf", domain.DocTypeCertidao},
		{"certidao-negativa-debitos.pdf", domain.DocTypeCND},
		{"CND_federal.pdf", domain.DocTypeCND},
		{"Procuração pública.pdf", domain.DocTypeProcuracao},
		{"certidao simplificada junta comercial.pdf", domain.DocTypeCertidaoSimplificada},
		{"declaracao primeira aquisicao.pdf", domain.DocTypeDeclaracaoPrimeiraAquisicao},
		{"CAT_SPU.pdf", domain.DocTypeAforamento},
		{"boletim.pdf", domain.DocTypeBoletimCadastro},
		{"minuta_registro.docx", domain.DocTypeMinuta},
		{"scan0001.pdf", domain.DocTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Declare(tt.filename))
		})
	}
}

func TestDeclare_FirstRuleWins(t *testing.T) {
	c := classifier.New(new(mocks.MockCompleter), classifier.Config{
		Rules: []classifier.FilenameRule{
			{Type: domain.DocTypeContrato, Patterns: []string{"contrato"}},
			{Type: domain.DocTypeMatricula, Patterns: []string{"matricula"}},
		},
	}, nil)

	assert.Equal(t, domain.DocTypeContrato, c.Declare("contrato_matricula.pdf"))
	assert.Equal(t, domain.DocTypeContrato, c.Declare("matricula_contrato.pdf"))
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in     string
		want   domain.DocumentType
		wantOK bool
	}{
		{"MATRICULA", domain.DocTypeMatricula, true},
		{"  matrícula \n", domain.DocTypeMatricula, true},
		{"\"ITBI\"", domain.DocTypeITBI, true},
		{"```\nCONTRATO\n```", domain.DocTypeContrato, true},
		{`{"type": "certidao"}`, domain.DocTypeCertidao, true},
		{"Tipo: CND", domain.DocTypeCND, true},
		{"**ESCRITURA**", domain.DocTypeContrato, true},
		{"certidão simplificada", domain.DocTypeCertidaoSimplificada, true},
		{"UNKNOWN", domain.DocTypeUnknown, true},
		{"", "", false},
		{"MATRICULA ou CONTRATO", "", false},
		{"não sei dizer", "", false},
		{`{"type": 3}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := classifier.ParseAnswer(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_ConfirmsDeclaredType(t *testing.T) {
	m := new(mocks.MockCompleter)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.Task == port.TaskClassify &&
			req.Subject == "matricula.pdf" &&
			strings.Contains(req.Prompt, "MATRICULA")
	})).Return(&port.CompletionResponse{Text: "MATRICULA"}, nil)

	c := classifier.New(m, classifier.Config{}, nil)
	declared, confirmed := c.Classify(context.Background(), "matricula.pdf", "REGISTRO GERAL  Matrícula nº 12.345")

	assert.Equal(t, domain.DocTypeMatricula, declared)
	assert.Equal(t, domain.DocTypeMatricula, confirmed)
	m.AssertExpectations(t)
}

func TestClassify_CollaboratorCorrectsType(t *testing.T) {
	m := new(mocks.MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything).Return(&port.CompletionResponse{Text: "CERTIDAO"}, nil)

	c := classifier.New(m, classifier.Config{}, nil)
	declared, confirmed := c.Classify(context.Background(), "matricula.pdf", "CERTIDÃO DE INTEIRO TEOR ...")

	assert.Equal(t, domain.DocTypeMatricula, declared)
	assert.Equal(t, domain.DocTypeCertidao, confirmed)
}

func TestClassify_FallsBackToDeclared(t *testing.T) {
	tests := []struct {
		name string
		resp *port.CompletionResponse
		err  error
	}{
		{"collaborator error", nil, errors.New("timeout")},
		{"empty answer", &port.CompletionResponse{Text: ""}, nil},
		{"garbled answer", &port.CompletionResponse{Text: "Este documento parece ser uma escritura ou contrato"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mocks.MockCompleter)
			m.On("Complete", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			c := classifier.New(m, classifier.Config{}, nil)
			declared, confirmed := c.Classify(context.Background(), "itbi.pdf", "GUIA DE ITBI")

			assert.Equal(t, domain.DocTypeITBI, declared)
			assert.Equal(t, domain.DocTypeITBI, confirmed)
		})
	}
}

func TestClassify_BlankTextSkipsCollaborator(t *testing.T) {
	m := new(mocks.MockCompleter)
	c := classifier.New(m, classifier.Config{}, nil)

	declared, confirmed := c.Classify(context.Background(), "scan.pdf", "  \n\t ")

	assert.Equal(t, domain.DocTypeUnknown, declared)
	assert.Equal(t, domain.DocTypeUnknown, confirmed)
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestClassify_ExcerptIsBounded(t *testing.T) {
	m := new(mocks.MockCompleter)
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Prompt, strings.Repeat("a", 10)) &&
			!strings.Contains(req.Prompt, strings.Repeat("a", 11))
	})).Return(&port.CompletionResponse{Text: "MINUTA"}, nil)

	c := classifier.New(m, classifier.Config{ExcerptLength: 10}, nil)
	_, confirmed := c.Classify(context.Background(), "x.txt", strings.Repeat("a", 500))

	assert.Equal(t, domain.DocTypeMinuta, confirmed)
	m.AssertExpectations(t)
}
