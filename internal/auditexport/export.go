// Package auditexport renders a qualification result as a spreadsheet for the
// registry's audit trail: one row per checklist verdict plus the document list.
package auditexport

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"registrum/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name. An empty name means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders result to w in the given format.
func Write(w io.Writer, format Format, result *domain.QualificationResult) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
}

var verdictColumns = []string{
	"Item",
	"Category",
	"Answer",
	"Justification",
	"Evidence Documents",
}

var documentColumns = []string{
	"Document ID",
	"Filename",
	"Declared Type",
	"Confirmed Type",
	"Extraction Error",
}

func verdictRows(result *domain.QualificationResult) [][]string {
	names := make(map[uuid.UUID]string, len(result.Documents))
	for _, d := range result.Documents {
		names[d.ID] = d.Filename
	}

	rows := make([][]string, 0, len(result.Verdicts))
	for _, v := range result.Verdicts {
		evidence := make([]string, 0, len(v.EvidenceDocumentIDs))
		for _, id := range v.EvidenceDocumentIDs {
			if name, ok := names[id]; ok {
				evidence = append(evidence, name)
			} else {
				evidence = append(evidence, id.String())
			}
		}
		rows = append(rows, []string{
			v.ItemID,
			string(v.Category),
			string(v.Answer),
			v.Justification,
			strings.Join(evidence, "; "),
		})
	}
	return rows
}

func documentRows(result *domain.QualificationResult) [][]string {
	rows := make([][]string, 0, len(result.Documents))
	for _, d := range result.Documents {
		rows = append(rows, []string{
			d.ID.String(),
			d.Filename,
			string(d.DeclaredType),
			string(d.ConfirmedType),
			formatBool(d.ExtractionError),
		})
	}
	return rows
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func joinTypes(types []domain.DocumentType) string {
	s := make([]string, len(types))
	for i, t := range types {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a label for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the attachment name for an export:
// qualificacao_{status}_{YYYY-MM-DD}.{format}
func BuildFilename(status domain.QualificationStatus, format Format, now time.Time) string {
	label := SanitizeFilename("qualificacao_" + strings.ToLower(string(status)))
	return fmt.Sprintf("%s_%s.%s", label, now.Format("2006-01-02"), format)
}
