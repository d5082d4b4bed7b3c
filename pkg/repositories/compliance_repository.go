package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/models"
)

// ComplianceRepository provides data access for compliance status views.
// Every query binds agency_id as a parameter; callers must also run inside a
// tenant scope so RLS backs the filter up.
type ComplianceRepository interface {
	Overview(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID, period models.Period) ([]models.ComplianceStatusRow, error)
	Overdue(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
	Upcoming(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
	ByType(ctx context.Context, agencyID uuid.UUID, assetType string, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
}

type complianceRepository struct{}

// NewComplianceRepository creates a new ComplianceRepository.
func NewComplianceRepository() ComplianceRepository {
	return &complianceRepository{}
}

var _ ComplianceRepository = (*complianceRepository)(nil)

func (r *complianceRepository) Overview(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID, period models.Period) ([]models.ComplianceStatusRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT building_id, asset_key, asset_type, status, last_inspected_at,
		       next_due_date, days_overdue, days_until_due, severity, priority
		FROM building_compliance_status_v
		WHERE agency_id = $1
		  AND ($2::uuid IS NULL OR building_id = $2)
		  AND next_due_date >= $3
		  AND ($4::date IS NULL OR next_due_date <= $4)
		ORDER BY next_due_date`

	rows, err := scope.Conn.Query(ctx, query, agencyID, buildingID, period.Since, period.Until)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance overview: %w", err)
	}
	defer rows.Close()

	return scanComplianceRows(rows)
}

func (r *complianceRepository) Overdue(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT building_id, asset_key, asset_type, status, last_inspected_at,
		       next_due_date, days_overdue, days_until_due, severity, priority
		FROM compliance_overdue_v
		WHERE agency_id = $1
		  AND ($2::uuid IS NULL OR building_id = $2)
		ORDER BY days_overdue DESC`

	rows, err := scope.Conn.Query(ctx, query, agencyID, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue compliance: %w", err)
	}
	defer rows.Close()

	return scanComplianceRows(rows)
}

func (r *complianceRepository) Upcoming(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT building_id, asset_key, asset_type, status, last_inspected_at,
		       next_due_date, days_overdue, days_until_due, severity, priority
		FROM compliance_upcoming_v
		WHERE agency_id = $1
		  AND ($2::uuid IS NULL OR building_id = $2)
		ORDER BY days_until_due ASC`

	rows, err := scope.Conn.Query(ctx, query, agencyID, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming compliance: %w", err)
	}
	defer rows.Close()

	return scanComplianceRows(rows)
}

func (r *complianceRepository) ByType(ctx context.Context, agencyID uuid.UUID, assetType string, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT building_id, asset_key, asset_type, status, last_inspected_at,
		       next_due_date, days_overdue, days_until_due, severity, priority
		FROM compliance_by_type_v
		WHERE agency_id = $1
		  AND asset_type = $2
		  AND ($3::uuid IS NULL OR building_id = $3)
		ORDER BY next_due_date ASC`

	rows, err := scope.Conn.Query(ctx, query, agencyID, assetType, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance by type: %w", err)
	}
	defer rows.Close()

	return scanComplianceRows(rows)
}

func scanComplianceRows(rows pgx.Rows) ([]models.ComplianceStatusRow, error) {
	results := make([]models.ComplianceStatusRow, 0)
	for rows.Next() {
		var row models.ComplianceStatusRow
		err := rows.Scan(
			&row.BuildingID, &row.AssetKey, &row.AssetType, &row.Status,
			&row.LastInspectedAt, &row.NextDueDate, &row.DaysOverdue,
			&row.DaysUntilDue, &row.Severity, &row.Priority,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read compliance rows: %w", err)
	}
	return results, nil
}
