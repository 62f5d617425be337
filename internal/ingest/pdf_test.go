package ingest

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticExtractor returns canned OCR output without touching the file.
type staticExtractor struct {
	text string
	err  error
}

func (s staticExtractor) ExtractText(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestExtractPDF(t *testing.T) {
	text := "Harbor Point Office Center\n" +
		"Rent Roll as of Q3 2025\n" +
		"\n" +
		"Unit    Tenant            SF       Monthly Rent    Lease Start    Lease End      Security Deposit\n" +
		"101     Acme Corp         2,500    $5,200.00       2022-03-01     2027-02-28     $10,400\n" +
		"102     Bayside Dental    1,800    $3,900.00       2023-07-15     2026-07-14     $7,800\n" +
		"103     VACANT            2,200    0\n"

	roll, err := ExtractPDF(context.Background(), staticExtractor{text: text}, "roll.pdf")
	require.NoError(t, err)

	require.Len(t, roll.Units, 3)
	assert.Equal(t, "Acme Corp", roll.Units[0].Tenant)
	assert.InDelta(t, 5200.0, roll.Units[0].MonthlyRent, 1e-9)
	assert.False(t, roll.Units[2].Occupied)
	assert.Equal(t, 3, roll.Summary.TotalUnits)
	assert.InDelta(t, 9100.0, roll.Summary.TotalMonthlyRent, 1e-9)
}

func TestExtractPDF_MarkdownTable(t *testing.T) {
	text := "| Unit | Tenant | SF | Monthly Rent |\n" +
		"| --- | --- | --- | --- |\n" +
		"| 101 | Acme Corp | 2,500 | $5,200.00 |\n" +
		"| 102 | VACANT | 1,800 | 0 |\n"

	roll, err := ExtractPDF(context.Background(), staticExtractor{text: text}, "roll.pdf")
	require.NoError(t, err)

	require.Len(t, roll.Units, 2)
	assert.True(t, roll.Units[0].Occupied)
	assert.False(t, roll.Units[1].Occupied)
}

func TestExtractPDF_OCRError(t *testing.T) {
	_, err := ExtractPDF(context.Background(), staticExtractor{err: eris.New("boom")}, "roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest: ocr roll.pdf")
}

func TestExtractPDF_NoRows(t *testing.T) {
	_, err := ExtractPDF(context.Background(), staticExtractor{text: "\n\n"}, "roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tabular text recognized")
}

func TestExtractFile_PDFRejected(t *testing.T) {
	_, err := ExtractFile("roll.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires OCR")
}
