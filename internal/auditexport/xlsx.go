package auditexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"registrum/internal/domain"
)

const (
	sheetSummary   = "Summary"
	sheetVerdicts  = "Verdicts"
	sheetDocuments = "Documents"
)

// WriteXLSX writes a workbook with Summary, Verdicts and Documents sheets.
func WriteXLSX(w io.Writer, result *domain.QualificationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{sheetVerdicts, sheetDocuments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	summary := [][]string{
		{"Catalog Version", result.CatalogVersion},
		{"Status", string(result.Status)},
		{"Score", fmt.Sprintf("%d", result.Score)},
		{"Yes", fmt.Sprintf("%d", result.Counts.Yes)},
		{"No", fmt.Sprintf("%d", result.Counts.No)},
		{"Not Applicable", fmt.Sprintf("%d", result.Counts.NotApplicable)},
		{"Missing Documents", joinTypes(result.MissingDocuments)},
		{"Missing Complementary", joinTypes(result.MissingComplementary)},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetColStyle(sheetSummary, "A", bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}

	if err := writeTable(f, sheetVerdicts, verdictColumns, verdictRows(result), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetVerdicts, "D", "D", 80); err != nil {
		return fmt.Errorf("sizing justification column: %w", err)
	}
	if err := writeTable(f, sheetDocuments, documentColumns, documentRows(result), bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	if err := writeRows(f, sheet, append([][]string{header}, rows...)); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
