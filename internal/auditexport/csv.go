package auditexport

import (
	"encoding/csv"
	"io"

	"registrum/internal/domain"
)

// BOM is the UTF-8 byte order mark so Excel on Windows reads accents correctly.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the verdict table, prefixed by a BOM.
func WriteCSV(w io.Writer, result *domain.QualificationResult) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(verdictColumns); err != nil {
		return err
	}
	if err := cw.WriteAll(verdictRows(result)); err != nil {
		return err
	}
	return cw.Error()
}
