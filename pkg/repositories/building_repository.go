package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blociq/blociq-engine/pkg/apperrors"
	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/models"
)

// BuildingRepository provides data access for buildings and their units.
type BuildingRepository interface {
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*models.Building, error)
	FindByName(ctx context.Context, agencyID uuid.UUID, name string) (*models.Building, error)
	ListUnits(ctx context.Context, agencyID, buildingID uuid.UUID) ([]models.UnitLeaseholder, error)
}

type buildingRepository struct{}

// NewBuildingRepository creates a new BuildingRepository.
func NewBuildingRepository() BuildingRepository {
	return &buildingRepository{}
}

var _ BuildingRepository = (*buildingRepository)(nil)

const buildingColumns = `id, agency_id, name, COALESCE(address, ''), COALESCE(building_manager_name, ''), is_hrb, created_at`

func (r *buildingRepository) GetByID(ctx context.Context, agencyID, id uuid.UUID) (*models.Building, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := fmt.Sprintf(`SELECT %s FROM buildings WHERE agency_id = $1 AND id = $2`, buildingColumns)

	building, err := scanBuilding(scope.Conn.QueryRow(ctx, query, agencyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	return building, nil
}

// FindByName resolves a building by partial, case-insensitive name match.
// The name is bound as a parameter inside the LIKE pattern, never
// concatenated into the query.
func (r *buildingRepository) FindByName(ctx context.Context, agencyID uuid.UUID, name string) (*models.Building, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM buildings
		WHERE agency_id = $1 AND name ILIKE '%%' || $2 || '%%'
		ORDER BY name
		LIMIT 1`, buildingColumns)

	building, err := scanBuilding(scope.Conn.QueryRow(ctx, query, agencyID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find building by name: %w", err)
	}
	return building, nil
}

func (r *buildingRepository) ListUnits(ctx context.Context, agencyID, buildingID uuid.UUID) ([]models.UnitLeaseholder, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT unit_id, building_id, unit_number, COALESCE(leaseholder_name, '')
		FROM units_leaseholders_v
		WHERE agency_id = $1 AND building_id = $2
		ORDER BY unit_number`

	rows, err := scope.Conn.Query(ctx, query, agencyID, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	units := make([]models.UnitLeaseholder, 0)
	for rows.Next() {
		var unit models.UnitLeaseholder
		if err := rows.Scan(&unit.UnitID, &unit.BuildingID, &unit.UnitNumber, &unit.LeaseholderName); err != nil {
			return nil, fmt.Errorf("failed to scan unit row: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unit rows: %w", err)
	}
	return units, nil
}

func scanBuilding(row pgx.Row) (*models.Building, error) {
	var b models.Building
	err := row.Scan(&b.ID, &b.AgencyID, &b.Name, &b.Address, &b.ManagerName, &b.IsHRB, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
