package reports

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blociq/blociq-engine/pkg/models"
)

func TestToTable_Pagination(t *testing.T) {
	columns := []string{"Asset"}
	rows := make([]map[string]any, 450)
	for i := range rows {
		rows[i] = map[string]any{"Asset": i}
	}

	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantRows   int
		wantPages  int
		wantedPage int
	}{
		{"first page default size", 1, 200, 200, 3, 1},
		{"last partial page", 3, 200, 50, 3, 3},
		{"past the end", 10, 200, 0, 3, 10},
		{"small page size", 2, 100, 100, 5, 2},
		{"zero page coerced to one", 0, 200, 200, 3, 1},
		{"zero page size uses default", 1, 0, 200, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := ToTable(columns, rows, tt.page, tt.pageSize)
			assert.Len(t, table.Rows, tt.wantRows)
			assert.Equal(t, tt.wantPages, table.Pagination.TotalPages)
			assert.Equal(t, tt.wantedPage, table.Pagination.Page)
			assert.Equal(t, 450, table.Pagination.TotalRows)
			assert.LessOrEqual(t, len(table.Rows), table.Pagination.PageSize)
		})
	}
}

func TestToTable_EmptyRows(t *testing.T) {
	table := ToTable([]string{"A"}, nil, 1, 200)
	assert.Empty(t, table.Rows)
	assert.Equal(t, 0, table.Pagination.TotalPages)
	assert.Equal(t, 0, table.Pagination.TotalRows)
}

func TestToCSV_RoundTrip(t *testing.T) {
	columns := []string{"Building", "Note"}
	awkward := "Ashwood \"House\", Block A\nSecond line"
	rows := []map[string]any{
		{"Building": awkward, "Note": nil},
		{"Building": "Plain", "Note": 42},
	}

	content, err := ToCSV(columns, rows)
	require.NoError(t, err)

	parsed, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, columns, parsed[0])
	assert.Equal(t, awkward, parsed[1][0], "embedded comma, quote and newline must survive a round trip")
	assert.Equal(t, "", parsed[1][1], "nil renders as empty string")
	assert.Equal(t, "42", parsed[2][1])
}

func TestToCSV_HeaderAlwaysEmitted(t *testing.T) {
	content, err := ToCSV([]string{"A", "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n", content)
}

func TestToCSV_FormatsTimeCells(t *testing.T) {
	rows := []map[string]any{
		{"Date": time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	content, err := ToCSV([]string{"Date"}, rows)
	require.NoError(t, err)
	assert.Contains(t, content, "15/03/2025")
}

func TestCSVFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Compliance Overview - Ashwood House", "compliance-overview-ashwood-house.csv"},
		{"EICR - Compliance", "eicr-compliance.csv"},
		{"Latest FRA Documents", "latest-fra-documents.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CSVFilename(tt.title))
	}
}

func TestFormatResponse_ExactlyOnePayload(t *testing.T) {
	result := &models.ReportResult{
		Columns: []string{"Asset"},
		Rows:    []map[string]any{{"Asset": "FRA"}},
		Meta:    models.ReportMeta{Extra: map[string]any{"note": "x"}},
	}

	t.Run("table", func(t *testing.T) {
		envelope, err := FormatResponse(result, models.FormatTable, "Title", "01/07/2025 - 13/08/2025", nil)
		require.NoError(t, err)
		assert.Equal(t, "report", envelope.Type)
		assert.NotNil(t, envelope.Table)
		assert.Nil(t, envelope.CSV)
		assert.Nil(t, envelope.PDF)
	})

	t.Run("csv", func(t *testing.T) {
		envelope, err := FormatResponse(result, models.FormatCSV, "Compliance Overview", "p", nil)
		require.NoError(t, err)
		assert.Nil(t, envelope.Table)
		require.NotNil(t, envelope.CSV)
		assert.Nil(t, envelope.PDF)
		assert.Equal(t, "compliance-overview.csv", envelope.CSV.Filename)
	})

	t.Run("pdf stub", func(t *testing.T) {
		envelope, err := FormatResponse(result, models.FormatPDF, "Title", "p", nil)
		require.NoError(t, err)
		assert.Nil(t, envelope.Table)
		assert.Nil(t, envelope.CSV)
		require.NotNil(t, envelope.PDF)
		assert.Contains(t, envelope.PDF.Content, "not yet available")
	})
}

func TestGenerateTitle(t *testing.T) {
	assert.Equal(t, "Compliance Overview - Ashwood House",
		GenerateTitle("Compliance Overview", models.ScopeBuilding, "Ashwood House"))
	assert.Equal(t, "Compliance Overview - Portfolio",
		GenerateTitle("Compliance Overview", models.ScopeAgency, ""))
	assert.Equal(t, "Compliance Overview - Unit",
		GenerateTitle("Compliance Overview", models.ScopeUnit, ""))
	assert.Equal(t, "Compliance Overview",
		GenerateTitle("Compliance Overview", models.ScopeBuilding, ""))
}

func TestFormatPeriod(t *testing.T) {
	now := time.Date(2025, 8, 13, 12, 0, 0, 0, time.UTC)
	until := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)

	open := models.Period{Since: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "01/07/2025 - 13/08/2025", FormatPeriod(open, now))

	closed := models.Period{Since: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Until: &until}
	assert.Equal(t, "01/02/2025 - 28/02/2025", FormatPeriod(closed, now))
}
