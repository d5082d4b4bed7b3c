package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/models"
	"github.com/blociq/blociq-engine/pkg/testhelpers"
)

// complianceTestContext holds all dependencies for compliance repository
// integration tests. Two agencies are seeded so every test can assert the
// agency filter as well as the result shape.
type complianceTestContext struct {
	t          *testing.T
	engineDB   *testhelpers.EngineDB
	repo       ComplianceRepository
	agencyID   uuid.UUID
	otherID    uuid.UUID
	buildingID uuid.UUID
}

func setupComplianceTest(t *testing.T) *complianceTestContext {
	t.Helper()

	engineDB := testhelpers.GetEngineDB(t)

	tc := &complianceTestContext{
		t:          t,
		engineDB:   engineDB,
		repo:       NewComplianceRepository(),
		agencyID:   uuid.MustParse("00000000-0000-0000-0000-0000000c0101"),
		otherID:    uuid.MustParse("00000000-0000-0000-0000-0000000c0102"),
		buildingID: uuid.MustParse("00000000-0000-0000-0000-0000000c0201"),
	}

	tc.seed()
	return tc
}

// scopedContext creates a context carrying a tenant scope for the agency.
func (tc *complianceTestContext) scopedContext(agencyID uuid.UUID) (context.Context, func()) {
	tc.t.Helper()

	scope, err := tc.engineDB.DB.WithTenant(context.Background(), agencyID)
	if err != nil {
		tc.t.Fatalf("Failed to create tenant scope: %v", err)
	}
	return database.SetTenantScope(context.Background(), scope), scope.Close
}

func (tc *complianceTestContext) seed() {
	tc.t.Helper()

	ctx := context.Background()
	otherBuilding := uuid.MustParse("00000000-0000-0000-0000-0000000c0202")

	exec := func(query string, args ...any) {
		tc.t.Helper()
		if _, err := tc.engineDB.DB.Exec(ctx, query, args...); err != nil {
			tc.t.Fatalf("Failed to seed test data: %v", err)
		}
	}

	exec(`INSERT INTO agencies (id, name) VALUES ($1, 'Compliance Test Agency'), ($2, 'Other Agency')
	      ON CONFLICT (id) DO NOTHING`, tc.agencyID, tc.otherID)
	exec(`INSERT INTO buildings (id, agency_id, name) VALUES ($1, $2, 'Ashwood House'), ($3, $4, 'Birchmere Court')
	      ON CONFLICT (id) DO NOTHING`, tc.buildingID, tc.agencyID, otherBuilding, tc.otherID)

	overdue := time.Now().AddDate(0, 0, -10)
	upcoming := time.Now().AddDate(0, 0, 30)
	exec(`INSERT INTO compliance_assets (building_id, asset_key, asset_type, status, last_inspected_at, next_due_date, severity, priority)
	      VALUES ($1, 'eicr-main', 'EICR', 'OVERDUE', $2, $3, 'high', 'urgent'),
	             ($1, 'fra-main', 'FRA', 'DUE_SOON', $2, $4, 'medium', 'standard'),
	             ($5, 'eicr-main', 'EICR', 'OVERDUE', $2, $3, 'high', 'urgent')
	      ON CONFLICT (building_id, asset_key) DO NOTHING`,
		tc.buildingID, time.Now().AddDate(-1, 0, 0), overdue, upcoming, otherBuilding)
}

func TestComplianceRepository_Overview(t *testing.T) {
	tc := setupComplianceTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	period := models.Period{Since: time.Now().AddDate(-1, 0, 0)}
	rows, err := tc.repo.Overview(ctx, tc.agencyID, nil, period)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only the agency's own assets should be visible")

	for _, row := range rows {
		assert.Equal(t, tc.buildingID, row.BuildingID)
		assert.NotEmpty(t, row.AssetKey)
		assert.NotEmpty(t, row.AssetType)
		assert.NotEmpty(t, row.Status)
		assert.NotEmpty(t, row.Severity)
		assert.NotEmpty(t, row.Priority)
		require.NotNil(t, row.LastInspectedAt)
		require.NotNil(t, row.NextDueDate)
	}
}

func TestComplianceRepository_Overview_PeriodBounds(t *testing.T) {
	tc := setupComplianceTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	// A window that opens after both due dates excludes everything.
	period := models.Period{Since: time.Now().AddDate(0, 6, 0)}
	rows, err := tc.repo.Overview(ctx, tc.agencyID, nil, period)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestComplianceRepository_Overdue(t *testing.T) {
	tc := setupComplianceTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	rows, err := tc.repo.Overdue(ctx, tc.agencyID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "eicr-main", rows[0].AssetKey)
	assert.Greater(t, rows[0].DaysOverdue, 0)
	assert.Equal(t, 0, rows[0].DaysUntilDue)
	assert.Equal(t, "high", rows[0].Severity)
	assert.Equal(t, "urgent", rows[0].Priority)
}

func TestComplianceRepository_Upcoming(t *testing.T) {
	tc := setupComplianceTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	rows, err := tc.repo.Upcoming(ctx, tc.agencyID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "fra-main", rows[0].AssetKey)
	assert.Greater(t, rows[0].DaysUntilDue, 0)
	assert.Equal(t, 0, rows[0].DaysOverdue)
}

func TestComplianceRepository_ByType(t *testing.T) {
	tc := setupComplianceTest(t)
	ctx, cleanup := tc.scopedContext(tc.agencyID)
	defer cleanup()

	rows, err := tc.repo.ByType(ctx, tc.agencyID, "FRA", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "FRA", rows[0].AssetType)
}

func TestComplianceRepository_AgencyFilter(t *testing.T) {
	tc := setupComplianceTest(t)

	// The other agency sees only its own overdue asset, and passing the
	// first agency's building id does not widen the result.
	ctx, cleanup := tc.scopedContext(tc.otherID)
	defer cleanup()

	rows, err := tc.repo.Overdue(ctx, tc.otherID, &tc.buildingID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestComplianceRepository_NoTenantScope(t *testing.T) {
	tc := setupComplianceTest(t)

	_, err := tc.repo.Overdue(context.Background(), tc.agencyID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant scope")
}
