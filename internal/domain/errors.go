package domain

import "errors"

var (
	ErrClassificationFailed     = errors.New("document classification failed")
	ErrExtractionMalformed      = errors.New("extraction response is malformed")
	ErrEvidenceCitationMismatch = errors.New("evaluator cited a document outside its evidence bundle")
	ErrCatalogMisconfigured     = errors.New("requirement catalog is misconfigured")
	ErrInvalidInput             = errors.New("invalid qualification input")
	ErrDuplicateFilename        = errors.New("duplicate document filename")
	ErrTextSourceUnavailable    = errors.New("document text could not be fetched")
	ErrUnsupportedExportFormat  = errors.New("unsupported export format")
)
