package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/models"
)

// DocumentRepository provides data access for building documents.
type DocumentRepository interface {
	LatestByType(ctx context.Context, agencyID uuid.UUID, docType string, buildingID *uuid.UUID) ([]models.DocumentRow, error)
	AllForBuilding(ctx context.Context, agencyID, buildingID uuid.UUID, period models.Period) ([]models.DocumentRow, error)
}

type documentRepository struct{}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

var _ DocumentRepository = (*documentRepository)(nil)

// LatestByType returns the most recent document per building for the given
// type. docType "all" skips the type filter.
func (r *documentRepository) LatestByType(ctx context.Context, agencyID uuid.UUID, docType string, buildingID *uuid.UUID) ([]models.DocumentRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT document_id, building_id, doc_type, filename, doc_date,
		       summary_json IS NOT NULL
		FROM latest_building_docs_v
		WHERE agency_id = $1
		  AND rn = 1
		  AND ($2 = 'all' OR doc_type = $2)
		  AND ($3::uuid IS NULL OR building_id = $3)
		ORDER BY doc_date DESC`

	rows, err := scope.Conn.Query(ctx, query, agencyID, docType, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest documents: %w", err)
	}
	defer rows.Close()

	return scanDocumentRows(rows)
}

func (r *documentRepository) AllForBuilding(ctx context.Context, agencyID, buildingID uuid.UUID, period models.Period) ([]models.DocumentRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT d.id, d.building_id, d.doc_type, d.filename, d.doc_date,
		       d.summary_json IS NOT NULL
		FROM building_documents d
		JOIN buildings b ON b.id = d.building_id
		WHERE b.agency_id = $1
		  AND d.building_id = $2
		  AND d.is_deleted = false
		  AND d.doc_date >= $3
		  AND ($4::date IS NULL OR d.doc_date <= $4)
		ORDER BY d.doc_date DESC`

	rows, err := scope.Conn.Query(ctx, query, agencyID, buildingID, period.Since, period.Until)
	if err != nil {
		return nil, fmt.Errorf("failed to query building documents: %w", err)
	}
	defer rows.Close()

	return scanDocumentRows(rows)
}

func scanDocumentRows(rows pgx.Rows) ([]models.DocumentRow, error) {
	results := make([]models.DocumentRow, 0)
	for rows.Next() {
		var row models.DocumentRow
		err := rows.Scan(&row.ID, &row.BuildingID, &row.DocType, &row.Filename, &row.DocDate, &row.HasSummary)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document rows: %w", err)
	}
	return results, nil
}
