package auditexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"registrum/internal/domain"
)

var (
	matriculaID = uuid.MustParse("6f1c1f7e-8a47-5b5e-9d7e-000000000001")
	orphanID    = uuid.MustParse("6f1c1f7e-8a47-5b5e-9d7e-000000000009")
)

func sampleResult() *domain.QualificationResult {
	return &domain.QualificationResult{
		CatalogVersion: "2024-ABR",
		Status:         domain.StatusPending,
		Score:          50,
		Counts:         domain.VerdictCounts{Yes: 1, No: 1, NotApplicable: 1},
		Verdicts: []domain.Verdict{
			{ItemID: "item1", Category: domain.CategoryPrenotacao, Answer: domain.AnswerYes, Justification: "Matrícula apresentada.", EvidenceDocumentIDs: []uuid.UUID{matriculaID}},
			{ItemID: "itemT1", Category: domain.CategoryTitulo, Answer: domain.AnswerNo, Justification: "Divergência, \"área\" diferente.", EvidenceDocumentIDs: []uuid.UUID{matriculaID, orphanID}},
			{ItemID: "itemR1", Category: domain.CategoryRegistro, Answer: domain.AnswerNotApplicable, Justification: "missing required document(s): CONTRATO", EvidenceDocumentIDs: []uuid.UUID{}},
		},
		Documents: []domain.DocumentSummary{
			{ID: matriculaID, Filename: "matricula.pdf", DeclaredType: domain.DocTypeMatricula, ConfirmedType: domain.DocTypeMatricula},
		},
		MissingDocuments:     []domain.DocumentType{domain.DocTypeContrato, domain.DocTypeITBI},
		MissingComplementary: []domain.DocumentType{},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedExportFormat)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleResult()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, verdictColumns, rows[0])
	assert.Equal(t, []string{"item1", "PRENOTACAO", "YES", "Matrícula apresentada.", "matricula.pdf"}, rows[1])
	assert.Equal(t, "Divergência, \"área\" diferente.", rows[2][3])
	assert.Equal(t, "matricula.pdf; "+orphanID.String(), rows[2][4])
	assert.Equal(t, "", rows[3][4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Verdicts", "Documents"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Status", "PENDING"}, summary[1])
	assert.Equal(t, []string{"Missing Documents", "CONTRATO, ITBI"}, summary[6])

	verdicts, err := f.GetRows("Verdicts")
	require.NoError(t, err)
	require.Len(t, verdicts, 4)
	assert.Equal(t, verdictColumns, verdicts[0])
	assert.Equal(t, "itemT1", verdicts[2][0])

	docs, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []string{matriculaID.String(), "matricula.pdf", "MATRICULA", "MATRICULA", "No"}, docs[1])
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), sampleResult())
	assert.ErrorIs(t, err, domain.ErrUnsupportedExportFormat)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "qualificacao_approved_2024-04-15.xlsx", BuildFilename(domain.StatusApproved, FormatXLSX, now))
	assert.Equal(t, "qualificacao_rejected_2024-04-15.csv", BuildFilename(domain.StatusRejected, FormatCSV, now))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Kit_Matr_cula_42", SanitizeFilename("Kit  Matrícula #42"))
}
