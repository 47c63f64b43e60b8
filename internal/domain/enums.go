package domain

import "strings"

// DocumentType is the legal category assigned to an uploaded document.
type DocumentType string

const (
	DocTypeMatricula                   DocumentType = "MATRICULA"
	DocTypeContrato                    DocumentType = "CONTRATO"
	DocTypeITBI                        DocumentType = "ITBI"
	DocTypeCertidao                    DocumentType = "CERTIDAO"
	DocTypeProcuracao                  DocumentType = "PROCURACAO"
	DocTypeCND                         DocumentType = "CND"
	DocTypeCertidaoSimplificada        DocumentType = "CERTIDAO_SIMPLIFICADA"
	DocTypeDeclaracaoPrimeiraAquisicao DocumentType = "DECLARACAO_PRIMEIRA_AQUISICAO"
	DocTypeAforamento                  DocumentType = "AFORAMENTO"
	DocTypeBoletimCadastro             DocumentType = "BOLETIM_CADASTRO"
	DocTypeMinuta                      DocumentType = "MINUTA"
	DocTypeUnknown                     DocumentType = "UNKNOWN"
)

// DocumentTypes lists every known document type in a stable order.
var DocumentTypes = []DocumentType{
	DocTypeMatricula,
	DocTypeContrato,
	DocTypeITBI,
	DocTypeCertidao,
	DocTypeProcuracao,
	DocTypeCND,
	DocTypeCertidaoSimplificada,
	DocTypeDeclaracaoPrimeiraAquisicao,
	DocTypeAforamento,
	DocTypeBoletimCadastro,
	DocTypeMinuta,
	DocTypeUnknown,
}

// MandatoryDocumentTypes are the documents every registration kit is expected to carry.
var MandatoryDocumentTypes = []DocumentType{
	DocTypeContrato,
	DocTypeMatricula,
	DocTypeITBI,
	DocTypeProcuracao,
	DocTypeCND,
}

// ComplementaryDocumentTypes are requested only for some transactions.
var ComplementaryDocumentTypes = []DocumentType{
	DocTypeCertidaoSimplificada,
	DocTypeDeclaracaoPrimeiraAquisicao,
	DocTypeAforamento,
	DocTypeBoletimCadastro,
}

// documentTypeAliases maps alternative spellings returned by collaborators to canonical types.
var documentTypeAliases = map[string]DocumentType{
	"CERTIDAO_ITBI":                 DocTypeITBI,
	"GUIA_ITBI":                     DocTypeITBI,
	"ESCRITURA":                     DocTypeContrato,
	"CONTRATO_COMPRA_VENDA":         DocTypeContrato,
	"CERTIDAO_NEGATIVA":             DocTypeCND,
	"CERTIDAO_NEGATIVA_DE_DEBITOS":  DocTypeCND,
	"CERTIDAO_DE_ONUS":              DocTypeCertidao,
	"CERTIDAO_INTEIRO_TEOR":         DocTypeCertidao,
	"CAT":                           DocTypeAforamento,
	"DECLARACAO_1A_AQUISICAO":       DocTypeDeclaracaoPrimeiraAquisicao,
	"BOLETIM_DE_CADASTRO":           DocTypeBoletimCadastro,
	"CERTIDAO_SIMPLIFICADA_JUNTA":   DocTypeCertidaoSimplificada,
	"DESCONHECIDO":                  DocTypeUnknown,
}

var knownDocumentTypes = func() map[DocumentType]bool {
	m := make(map[DocumentType]bool, len(DocumentTypes))
	for _, t := range DocumentTypes {
		m[t] = true
	}
	return m
}()

// IsKnown reports whether t is one of the enumerated document types.
func (t DocumentType) IsKnown() bool {
	return knownDocumentTypes[t]
}

// ParseDocumentType resolves an upper-case, underscore-separated token to a
// document type. Accent folding is the caller's responsibility.
func ParseDocumentType(token string) (DocumentType, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if t := DocumentType(token); t.IsKnown() {
		return t, true
	}
	if t, ok := documentTypeAliases[token]; ok {
		return t, true
	}
	return "", false
}

// Category groups checklist items by the registration stage they belong to.
type Category string

const (
	CategoryPrenotacao  Category = "PRENOTACAO"
	CategoryTitulo      Category = "TITULO"
	CategoryConferencia Category = "CONFERENCIA"
	CategoryRegistro    Category = "REGISTRO"
)

// ValidCategories is the set of accepted checklist categories.
var ValidCategories = map[Category]bool{
	CategoryPrenotacao:  true,
	CategoryTitulo:      true,
	CategoryConferencia: true,
	CategoryRegistro:    true,
}

// Answer is the outcome of a single checklist item.
type Answer string

const (
	AnswerYes           Answer = "YES"
	AnswerNo            Answer = "NO"
	AnswerNotApplicable Answer = "NOT_APPLICABLE"
)

// QualificationStatus is the overall status of a qualification run.
type QualificationStatus string

const (
	StatusApproved QualificationStatus = "APPROVED"
	StatusPending  QualificationStatus = "PENDING"
	StatusRejected QualificationStatus = "REJECTED"
)
