package reports

import (
	"encoding/csv"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/blociq/blociq-engine/pkg/models"
)

// DefaultPageSize is the table page size when the caller does not give one.
const DefaultPageSize = 200

// ToTable slices rows for pagination. Pages are 1-indexed; out-of-range
// pages return an empty row slice with correct metadata.
func ToTable(columns []string, rows []map[string]any, page, pageSize int) models.TablePayload {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	totalRows := len(rows)
	totalPages := int(math.Ceil(float64(totalRows) / float64(pageSize)))

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalRows {
		start = totalRows
	}
	if end > totalRows {
		end = totalRows
	}

	return models.TablePayload{
		Columns: columns,
		Rows:    rows[start:end],
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalRows:  totalRows,
		},
	}
}

// ToCSV renders rows as RFC 4180 CSV. The header row is always emitted, even
// for zero rows; nil cells render as empty strings.
func ToCSV(columns []string, rows []map[string]any) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = cellString(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return sb.String(), nil
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("02/01/2006")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToPDF is a placeholder. Real rendering is not implemented; the payload
// says so rather than pretending to be a document.
func ToPDF(title string) models.FilePayload {
	return models.FilePayload{
		Content:  fmt.Sprintf("PDF generation for %q is not yet available. Request the report as CSV or table instead.", title),
		Filename: CSVBaseName(title) + ".pdf",
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// CSVBaseName derives a file basename from a report title: lowercase with
// every non-alphanumeric run replaced by a hyphen.
func CSVBaseName(title string) string {
	name := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(name, "-")
}

// CSVFilename derives the full export filename for a report title.
func CSVFilename(title string) string {
	return CSVBaseName(title) + ".csv"
}

// FormatResponse assembles the response envelope for a report result.
// Exactly one of table, csv or pdf is populated, matching format.
func FormatResponse(result *models.ReportResult, format models.ReportFormat, title, period string, actions []models.ReportAction) (*models.ReportEnvelope, error) {
	envelope := &models.ReportEnvelope{
		Type:    "report",
		Title:   title,
		Period:  period,
		Actions: actions,
		Meta:    result.Meta.Extra,
	}

	switch format {
	case models.FormatCSV:
		content, err := ToCSV(result.Columns, result.Rows)
		if err != nil {
			return nil, err
		}
		envelope.CSV = &models.FilePayload{
			Content:  content,
			Filename: CSVFilename(title),
		}
	case models.FormatPDF:
		pdf := ToPDF(title)
		envelope.PDF = &pdf
	default:
		table := ToTable(result.Columns, result.Rows, 1, DefaultPageSize)
		envelope.Table = &table
	}

	return envelope, nil
}
