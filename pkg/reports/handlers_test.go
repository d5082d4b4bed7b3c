package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blociq/blociq-engine/pkg/models"
)

type fakeComplianceSource struct {
	rows []models.ComplianceStatusRow
	err  error

	gotAgencyID  uuid.UUID
	gotAssetType string
}

func (f *fakeComplianceSource) Overview(_ context.Context, agencyID uuid.UUID, _ *uuid.UUID, _ models.Period) ([]models.ComplianceStatusRow, error) {
	f.gotAgencyID = agencyID
	return f.rows, f.err
}

func (f *fakeComplianceSource) Overdue(_ context.Context, agencyID uuid.UUID, _ *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	f.gotAgencyID = agencyID
	return f.rows, f.err
}

func (f *fakeComplianceSource) Upcoming(_ context.Context, agencyID uuid.UUID, _ *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	f.gotAgencyID = agencyID
	return f.rows, f.err
}

func (f *fakeComplianceSource) ByType(_ context.Context, agencyID uuid.UUID, assetType string, _ *uuid.UUID) ([]models.ComplianceStatusRow, error) {
	f.gotAgencyID = agencyID
	f.gotAssetType = assetType
	return f.rows, f.err
}

type fakeDocumentSource struct {
	rows       []models.DocumentRow
	err        error
	gotDocType string
}

func (f *fakeDocumentSource) LatestByType(_ context.Context, _ uuid.UUID, docType string, _ *uuid.UUID) ([]models.DocumentRow, error) {
	f.gotDocType = docType
	return f.rows, f.err
}

func (f *fakeDocumentSource) AllForBuilding(_ context.Context, _, _ uuid.UUID, _ models.Period) ([]models.DocumentRow, error) {
	return f.rows, f.err
}

type fakeBuildingSource struct {
	building *models.Building
	err      error
}

func (f *fakeBuildingSource) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Building, error) {
	return f.building, f.err
}

func newHandlerSet(compliance *fakeComplianceSource, documents *fakeDocumentSource, buildings *fakeBuildingSource) *HandlerSet {
	if compliance == nil {
		compliance = &fakeComplianceSource{}
	}
	if documents == nil {
		documents = &fakeDocumentSource{}
	}
	if buildings == nil {
		buildings = &fakeBuildingSource{}
	}
	return &HandlerSet{Compliance: compliance, Documents: documents, Buildings: buildings}
}

func complianceIntent(buildingID *uuid.UUID) *models.ReportIntent {
	return &models.ReportIntent{
		Subject: "compliance",
		Scope:   models.ScopeBuilding,
		Period:  models.Period{Since: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		Format:  models.FormatTable,

		BuildingID: buildingID,
	}
}

func TestRegisterAll(t *testing.T) {
	registry := NewRegistry()
	newHandlerSet(nil, nil, nil).RegisterAll(registry)

	for _, id := range []string{
		"compliance.overview", "compliance.overdue", "compliance.upcoming",
		"compliance.byType", "documents.latestByType", "documents.allForBuilding",
		"emails.inboxOverview",
	} {
		_, ok := registry.Handlers()[id]
		assert.True(t, ok, "handler %s should be registered", id)
	}
}

func TestComplianceOverview(t *testing.T) {
	buildingID := uuid.New()
	lastInspected := time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)
	nextDue := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)

	compliance := &fakeComplianceSource{rows: []models.ComplianceStatusRow{
		{BuildingID: buildingID, AssetKey: "FRA", Status: "compliant", LastInspectedAt: &lastInspected, NextDueDate: &nextDue, DaysUntilDue: 84},
		{BuildingID: buildingID, AssetKey: "EICR", Status: "overdue", DaysOverdue: 30},
	}}
	buildings := &fakeBuildingSource{building: &models.Building{ID: buildingID, Name: "Ashwood House", IsHRB: true}}
	set := newHandlerSet(compliance, nil, buildings)

	agencyID := uuid.New()
	result, err := set.complianceOverview(context.Background(), complianceIntent(&buildingID), agencyID)
	require.NoError(t, err)

	assert.Equal(t, agencyID, compliance.gotAgencyID)
	assert.Equal(t, []string{"Building", "Asset", "Status", "Last Inspected", "Next Due", "Days Overdue/Until"}, result.Columns)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, "Ashwood House", result.Rows[0]["Building"])
	assert.Equal(t, "05/11/2024", result.Rows[0]["Last Inspected"])
	assert.Equal(t, "+84", result.Rows[0]["Days Overdue/Until"])

	assert.Equal(t, "N/A", result.Rows[1]["Next Due"])
	assert.Equal(t, "-30", result.Rows[1]["Days Overdue/Until"])

	assert.Equal(t, "Compliance Overview - Ashwood House", result.Meta.Title)
	assert.Equal(t, true, result.Meta.Extra["isHrb"])
}

func TestComplianceOverview_SourceError(t *testing.T) {
	compliance := &fakeComplianceSource{err: errors.New("view missing")}
	set := newHandlerSet(compliance, nil, nil)

	_, err := set.complianceOverview(context.Background(), complianceIntent(nil), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch compliance data")
}

func TestComplianceOverview_BuildingLookupFailureDegrades(t *testing.T) {
	buildingID := uuid.New()
	compliance := &fakeComplianceSource{rows: []models.ComplianceStatusRow{
		{BuildingID: buildingID, AssetKey: "FRA", Status: "compliant"},
	}}
	buildings := &fakeBuildingSource{err: errors.New("not found")}
	set := newHandlerSet(compliance, nil, buildings)

	result, err := set.complianceOverview(context.Background(), complianceIntent(&buildingID), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, buildingID.String(), result.Rows[0]["Building"], "ids stand in when the name lookup fails")
}

func TestComplianceByType_UppercasesSubject(t *testing.T) {
	compliance := &fakeComplianceSource{rows: []models.ComplianceStatusRow{
		{BuildingID: uuid.New(), Status: "satisfactory", DaysOverdue: 12},
	}}
	set := newHandlerSet(compliance, nil, nil)

	intent := complianceIntent(nil)
	intent.Subject = "eicr"
	result, err := set.complianceByType(context.Background(), intent, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "EICR", compliance.gotAssetType)
	assert.Equal(t, "EICR", result.Meta.Extra["assetType"])
	assert.Equal(t, "Overdue (12 days)", result.Rows[0]["Status"])
}

func TestDocumentsLatestByType_MapsSubjects(t *testing.T) {
	tests := []struct {
		subject string
		docType string
	}{
		{"eicr", "EICR"},
		{"fra", "FRA"},
		{"ews1", "EWS1"},
		{"insurance", "insurance"},
		{"documents", "all"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			documents := &fakeDocumentSource{}
			set := newHandlerSet(nil, documents, nil)

			intent := complianceIntent(nil)
			intent.Subject = tt.subject
			_, err := set.documentsLatestByType(context.Background(), intent, uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.docType, documents.gotDocType)
		})
	}
}

func TestDocumentsAllForBuilding_RequiresBuildingID(t *testing.T) {
	set := newHandlerSet(nil, nil, nil)
	_, err := set.documentsAllForBuilding(context.Background(), complianceIntent(nil), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building id is required")
}

func TestDocumentsAllForBuilding_SummaryColumn(t *testing.T) {
	buildingID := uuid.New()
	docDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	documents := &fakeDocumentSource{rows: []models.DocumentRow{
		{DocType: "FRA", Filename: "fra-2025.pdf", DocDate: &docDate, HasSummary: true},
		{DocType: "EICR", Filename: "eicr.pdf"},
	}}
	set := newHandlerSet(nil, documents, nil)

	result, err := set.documentsAllForBuilding(context.Background(), complianceIntent(&buildingID), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Available", result.Rows[0]["Summary"])
	assert.Equal(t, "20/01/2025", result.Rows[0]["Date"])
	assert.Equal(t, "N/A", result.Rows[1]["Summary"])
}

func TestEmailsInboxOverview_Stub(t *testing.T) {
	result, err := emailsInboxOverview(context.Background(), complianceIntent(nil), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, []string{"Date", "From", "Subject", "Status"}, result.Columns)
	assert.Equal(t, "Email inbox overview not yet implemented", result.Meta.Extra["note"])
}
