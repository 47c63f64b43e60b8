package domain

import (
	"github.com/google/uuid"
)

// TextInput is one already-OCR'd document as delivered by text acquisition.
type TextInput struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// ExtractionRecord is the normalized attribute map extracted from one document.
// Absent attributes are present as empty strings.
type ExtractionRecord map[string]string

// Document is an uploaded document as it moves through a single qualification run.
type Document struct {
	ID              uuid.UUID        `json:"id"`
	Filename        string           `json:"filename"`
	RawText         string           `json:"-"`
	DeclaredType    DocumentType     `json:"declared_type"`
	ConfirmedType   DocumentType     `json:"confirmed_type"`
	Extraction      ExtractionRecord `json:"extraction"`
	ExtractionError bool             `json:"extraction_error"`
}

// Usable reports whether the document may back a checklist verdict.
func (d *Document) Usable() bool {
	return !d.ExtractionError && d.ConfirmedType != DocTypeUnknown && d.ConfirmedType != ""
}

// ChecklistItem is one compliance question with its document prerequisites.
type ChecklistItem struct {
	ID            string         `yaml:"id" json:"id"`
	Category      Category       `yaml:"category" json:"category"`
	Question      string         `yaml:"question" json:"question"`
	RequiredTypes []DocumentType `yaml:"requires" json:"required_types"`
	Mandatory     bool           `yaml:"mandatory" json:"mandatory"`
}

// Verdict is the justified answer for one checklist item.
type Verdict struct {
	ItemID              string      `json:"item_id"`
	Category            Category    `json:"category"`
	Answer              Answer      `json:"answer"`
	Justification       string      `json:"justification"`
	EvidenceDocumentIDs []uuid.UUID `json:"evidence_document_ids"`
}

// DocumentSummary is the audit view of a processed document.
type DocumentSummary struct {
	ID              uuid.UUID    `json:"id"`
	Filename        string       `json:"filename"`
	DeclaredType    DocumentType `json:"declared_type"`
	ConfirmedType   DocumentType `json:"confirmed_type"`
	ExtractionError bool         `json:"extraction_error"`
}

// VerdictCounts tallies verdicts by answer.
type VerdictCounts struct {
	Yes           int `json:"yes"`
	No            int `json:"no"`
	NotApplicable int `json:"not_applicable"`
}

// QualificationResult is the complete, serializable outcome of a qualification run.
type QualificationResult struct {
	CatalogVersion       string              `json:"catalog_version"`
	Status               QualificationStatus `json:"status"`
	Score                int                 `json:"score"`
	Counts               VerdictCounts       `json:"counts"`
	Verdicts             []Verdict           `json:"verdicts"`
	Documents            []DocumentSummary   `json:"documents"`
	MissingDocuments     []DocumentType      `json:"missing_documents"`
	MissingComplementary []DocumentType      `json:"missing_complementary"`
}
