package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blociq/blociq-engine/pkg/apperrors"
	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/testhelpers"
)

type buildingTestContext struct {
	t          *testing.T
	engineDB   *testhelpers.EngineDB
	repo       BuildingRepository
	agencyID   uuid.UUID
	otherID    uuid.UUID
	buildingID uuid.UUID
}

func setupBuildingTest(t *testing.T) *buildingTestContext {
	t.Helper()

	engineDB := testhelpers.GetEngineDB(t)

	tc := &buildingTestContext{
		t:          t,
		engineDB:   engineDB,
		repo:       NewBuildingRepository(),
		agencyID:   uuid.MustParse("00000000-0000-0000-0000-0000000b0101"),
		otherID:    uuid.MustParse("00000000-0000-0000-0000-0000000b0102"),
		buildingID: uuid.MustParse("00000000-0000-0000-0000-0000000b0201"),
	}

	tc.seed()
	return tc
}

func (tc *buildingTestContext) scopedContext(agencyID uuid.UUID) (context.Context, func()) {
	tc.t.Helper()

	scope, err := tc.engineDB.DB.WithTenant(context.Background(), agencyID)
	if err != nil {
		tc.t.Fatalf("Failed to create tenant scope: %v", err)
	}
	return database.SetTenantScope(context.Background(), scope), scope.Close
}

func (tc *buildingTestContext) seed() {
	tc.t.Helper()

	ctx := context.Background()

	exec := func(query string, args ...any) {
		tc.t.Helper()
		if _, err := tc.engineDB.DB.Exec(ctx, query, args...); err != nil {
			tc.t.Fatalf("Failed to seed test data: %v", err)
		}
	}

	exec(`INSERT INTO agencies (id, name) VALUES ($1, 'Building Test Agency'), ($2, 'Other Agency')
	      ON CONFLICT (id) DO NOTHING`, tc.agencyID, tc.otherID)
	exec(`INSERT INTO buildings (id, agency_id, name, address, building_manager_name)
	      VALUES ($1, $2, 'Maple Row', '1 Maple Row, London', 'J. Carter')
	      ON CONFLICT (id) DO NOTHING`, tc.buildingID, tc.agencyID)
	exec(`INSERT INTO units (building_id, unit_number, leaseholder_name)
	      VALUES ($1, 'Flat 1', 'A. Patel'), ($1, 'Flat 2', NULL)
	      ON CONFLICT (building_id, unit_number) DO NOTHING`, tc.buildingID)
}

func TestBuildingRepository_GetByID(t *testing.T) {
	tc := setupBuildingTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	building, err := tc.repo.GetByID(ctx, tc.agencyID, tc.buildingID)
	require.NoError(t, err)

	assert.Equal(t, tc.buildingID, building.ID)
	assert.Equal(t, tc.agencyID, building.AgencyID)
	assert.Equal(t, "Maple Row", building.Name)
	assert.Equal(t, "1 Maple Row, London", building.Address)
	assert.Equal(t, "J. Carter", building.ManagerName)
	assert.False(t, building.CreatedAt.IsZero())
}

func TestBuildingRepository_GetByID_WrongAgency(t *testing.T) {
	tc := setupBuildingTest(t)
	ctx, cleanup := tc.scopedContext(tc.otherID)
	defer cleanup()

	// A valid building id under the wrong agency is not found.
	_, err := tc.repo.GetByID(ctx, tc.otherID, tc.buildingID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBuildingRepository_FindByName(t *testing.T) {
	tc := setupBuildingTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	t.Run("partial match is case-insensitive", func(t *testing.T) {
		building, err := tc.repo.FindByName(ctx, tc.agencyID, "maple")
		require.NoError(t, err)
		assert.Equal(t, tc.buildingID, building.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := tc.repo.FindByName(ctx, tc.agencyID, "nonexistent tower")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestBuildingRepository_ListUnits(t *testing.T) {
	tc := setupBuildingTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	units, err := tc.repo.ListUnits(ctx, tc.agencyID, tc.buildingID)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "Flat 1", units[0].UnitNumber)
	assert.Equal(t, "A. Patel", units[0].LeaseholderName)
	assert.Equal(t, "Flat 2", units[1].UnitNumber)
	assert.Empty(t, units[1].LeaseholderName, "NULL leaseholder scans as empty string")
}
