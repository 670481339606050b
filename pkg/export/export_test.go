package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSheets() []Sheet {
	headers := []string{"Name", "Payment Status"}
	return []Sheet{
		{Name: "Physics/HSC: Batch A", Data: Dataset{Headers: headers, Rows: []map[string]string{
			{"Name": "Rahim", "Payment Status": "PAID"},
			{"Name": "Karim", "Payment Status": "UNPAID"},
		}}},
		{Name: "Unassigned Students", Data: Dataset{Headers: headers, Rows: []map[string]string{
			{"Name": "Salma", "Payment Status": "UNPAID"},
		}}},
	}
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Physics_HSC_ Batch A", SanitizeSheetName("Physics/HSC: Batch A"))
	assert.Equal(t, "a_b_c_d_e_f_g_h_i_j_k", SanitizeSheetName(`a\b*c?d[e]f<g>h|i"j/k`))
	assert.Len(t, []rune(SanitizeSheetName("An extremely long batch name that exceeds the limit")), 31)
	assert.Equal(t, "Sheet", SanitizeSheetName("   "))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "text/csv", f.ContentType())

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestXLSXExporterWritesOneSheetPerGroup(t *testing.T) {
	payload, err := NewXLSXExporter().Render(sampleSheets())
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Physics_HSC_ Batch A", "Unassigned Students"}, file.GetSheetList())
	rows, err := file.GetRows("Physics_HSC_ Batch A")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Payment Status"}, rows[0])
	assert.Equal(t, []string{"Karim", "UNPAID"}, rows[2])
}

func TestXLSXExporterDeduplicatesNames(t *testing.T) {
	sheets := sampleSheets()
	sheets[1].Name = sheets[0].Name
	payload, err := NewXLSXExporter().Render(sheets)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, []string{"Physics_HSC_ Batch A", "Physics_HSC_ Batch A (2)"}, file.GetSheetList())
}

func TestCSVExporterFlattensSheets(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleSheets())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Sheet", "Name", "Payment Status"}, records[0])
	assert.Equal(t, []string{"Unassigned Students", "Salma", "UNPAID"}, records[3])
}

func TestPDFExporterRenders(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleSheets(), "Students January_2025")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportersRejectEmptyHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(nil)
	assert.Error(t, err)
	_, err = NewCSVExporter().Render([]Sheet{{Name: "x"}})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(nil, "")
	assert.Error(t, err)
}
