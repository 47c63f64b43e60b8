package qualification

import (
	"registrum/internal/domain"
)

// Resolution is the analyzability of one checklist item against the present document types.
type Resolution struct {
	Item    domain.ChecklistItem
	Missing []domain.DocumentType
}

// Analyzable reports whether every required type is present.
func (r Resolution) Analyzable() bool {
	return len(r.Missing) == 0
}

// PresentTypes returns the confirmed types of the usable documents.
// UNKNOWN and failed documents never count as present.
func PresentTypes(docs []*domain.Document) map[domain.DocumentType]bool {
	present := make(map[domain.DocumentType]bool)
	for _, d := range docs {
		if d.Usable() {
			present[d.ConfirmedType] = true
		}
	}
	return present
}

// Resolve partitions items into analyzable and non-analyzable, preserving
// catalog order. Missing types are listed in the item's required order.
func Resolve(items []domain.ChecklistItem, present map[domain.DocumentType]bool) []Resolution {
	out := make([]Resolution, len(items))
	for i, item := range items {
		out[i].Item = item
		for _, t := range item.RequiredTypes {
			if !present[t] {
				out[i].Missing = append(out[i].Missing, t)
			}
		}
	}
	return out
}

// MissingDocumentClasses reports which mandatory and complementary document
// types are absent from present. Both slices are non-nil.
func MissingDocumentClasses(present map[domain.DocumentType]bool) (mandatory, complementary []domain.DocumentType) {
	mandatory = missingFrom(domain.MandatoryDocumentTypes, present)
	complementary = missingFrom(domain.ComplementaryDocumentTypes, present)
	return mandatory, complementary
}

func missingFrom(types []domain.DocumentType, present map[domain.DocumentType]bool) []domain.DocumentType {
	missing := []domain.DocumentType{}
	for _, t := range types {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
