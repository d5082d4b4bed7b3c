package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blociq/blociq-engine/pkg/models"
)

// ComplianceSource provides tenant-scoped compliance status rows.
type ComplianceSource interface {
	Overview(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID, period models.Period) ([]models.ComplianceStatusRow, error)
	Overdue(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
	Upcoming(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
	ByType(ctx context.Context, agencyID uuid.UUID, assetType string, buildingID *uuid.UUID) ([]models.ComplianceStatusRow, error)
}

// DocumentSource provides tenant-scoped building document rows.
type DocumentSource interface {
	LatestByType(ctx context.Context, agencyID uuid.UUID, docType string, buildingID *uuid.UUID) ([]models.DocumentRow, error)
	AllForBuilding(ctx context.Context, agencyID, buildingID uuid.UUID, period models.Period) ([]models.DocumentRow, error)
}

// BuildingSource resolves building display context.
type BuildingSource interface {
	GetByID(ctx context.Context, agencyID, id uuid.UUID) (*models.Building, error)
}

// HandlerSet wires the built-in report handlers to their data sources.
type HandlerSet struct {
	Compliance ComplianceSource
	Documents  DocumentSource
	Buildings  BuildingSource
}

// RegisterAll registers every built-in handler on the registry. Called once
// at bootstrap, before any request handling begins.
func (s *HandlerSet) RegisterAll(registry *Registry) {
	registry.Register(Handler{
		ID:          "compliance.overview",
		Name:        "Compliance Overview",
		Description: "Overview of compliance status for all assets",
		Run:         s.complianceOverview,
	})
	registry.Register(Handler{
		ID:          "compliance.overdue",
		Name:        "Compliance Overdue",
		Description: "Assets that are overdue for inspection or renewal",
		Run:         s.complianceOverdue,
	})
	registry.Register(Handler{
		ID:          "compliance.upcoming",
		Name:        "Compliance Upcoming",
		Description: "Assets due for inspection or renewal in the next 90 days",
		Run:         s.complianceUpcoming,
	})
	registry.Register(Handler{
		ID:          "compliance.byType",
		Name:        "Compliance By Type",
		Description: "Compliance status for specific asset types (EICR, FRA, etc.)",
		Run:         s.complianceByType,
	})
	registry.Register(Handler{
		ID:          "documents.latestByType",
		Name:        "Latest Documents By Type",
		Description: "Most recent documents of a specific type",
		Run:         s.documentsLatestByType,
	})
	registry.Register(Handler{
		ID:          "documents.allForBuilding",
		Name:        "All Documents For Building",
		Description: "All documents for a specific building",
		Run:         s.documentsAllForBuilding,
	})
	registry.Register(Handler{
		ID:          "emails.inboxOverview",
		Name:        "Inbox Overview",
		Description: "Overview of inbox emails and communications",
		Run:         emailsInboxOverview,
	})
}

// buildingContext fetches the building for display enrichment. A lookup
// failure degrades to ids in the output rather than failing the report.
func (s *HandlerSet) buildingContext(ctx context.Context, agencyID uuid.UUID, buildingID *uuid.UUID) *models.Building {
	if buildingID == nil {
		return nil
	}
	building, err := s.Buildings.GetByID(ctx, agencyID, *buildingID)
	if err != nil {
		return nil
	}
	return building
}

func buildingLabel(building *models.Building, id uuid.UUID) string {
	if building != nil {
		return building.Name
	}
	return id.String()
}

func buildingName(building *models.Building) string {
	if building == nil {
		return ""
	}
	return building.Name
}

func ukDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(ukDateLayout)
}

func buildMeta(title, period string, rowCount int, building *models.Building, extra map[string]any) models.ReportMeta {
	meta := models.ReportMeta{
		Title:     title,
		Period:    period,
		TotalRows: rowCount,
		Extra:     map[string]any{},
	}
	if building != nil {
		meta.Extra["buildingName"] = building.Name
		meta.Extra["isHrb"] = building.IsHRB
	}
	for k, v := range extra {
		meta.Extra[k] = v
	}
	return meta
}

func (s *HandlerSet) complianceOverview(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	data, err := s.Compliance.Overview(ctx, agencyID, intent.BuildingID, intent.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch compliance data: %w", err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Building", "Asset", "Status", "Last Inspected", "Next Due", "Days Overdue/Until"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		daysLabel := fmt.Sprintf("+%d", row.DaysUntilDue)
		if row.DaysOverdue > 0 {
			daysLabel = fmt.Sprintf("-%d", row.DaysOverdue)
		}
		rows = append(rows, map[string]any{
			"Building":           buildingLabel(building, row.BuildingID),
			"Asset":              row.AssetKey,
			"Status":             row.Status,
			"Last Inspected":     ukDate(row.LastInspectedAt),
			"Next Due":           ukDate(row.NextDueDate),
			"Days Overdue/Until": daysLabel,
		})
	}

	title := GenerateTitle("Compliance Overview", intent.Scope, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, nil),
	}, nil
}

func (s *HandlerSet) complianceOverdue(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	data, err := s.Compliance.Overdue(ctx, agencyID, intent.BuildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overdue compliance data: %w", err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Building", "Asset", "Next Due", "Days Overdue", "Severity"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		rows = append(rows, map[string]any{
			"Building":     buildingLabel(building, row.BuildingID),
			"Asset":        row.AssetKey,
			"Next Due":     ukDate(row.NextDueDate),
			"Days Overdue": row.DaysOverdue,
			"Severity":     row.Severity,
		})
	}

	title := GenerateTitle("Compliance - Overdue", intent.Scope, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, nil),
	}, nil
}

func (s *HandlerSet) complianceUpcoming(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	data, err := s.Compliance.Upcoming(ctx, agencyID, intent.BuildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming compliance data: %w", err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Building", "Asset", "Next Due", "Days Until Due", "Priority"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		rows = append(rows, map[string]any{
			"Building":       buildingLabel(building, row.BuildingID),
			"Asset":          row.AssetKey,
			"Next Due":       ukDate(row.NextDueDate),
			"Days Until Due": row.DaysUntilDue,
			"Priority":       row.Priority,
		})
	}

	title := GenerateTitle("Compliance - Upcoming", intent.Scope, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, nil),
	}, nil
}

func (s *HandlerSet) complianceByType(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	assetType := strings.ToUpper(intent.Subject)

	data, err := s.Compliance.ByType(ctx, agencyID, assetType, intent.BuildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s compliance data: %w", assetType, err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Building", "Last Inspected", "Result", "Next Due", "Status"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		statusLabel := fmt.Sprintf("Due in %d days", row.DaysUntilDue)
		if row.DaysOverdue > 0 {
			statusLabel = fmt.Sprintf("Overdue (%d days)", row.DaysOverdue)
		}
		rows = append(rows, map[string]any{
			"Building":       buildingLabel(building, row.BuildingID),
			"Last Inspected": ukDate(row.LastInspectedAt),
			"Result":         row.Status,
			"Next Due":       ukDate(row.NextDueDate),
			"Status":         statusLabel,
		})
	}

	title := GenerateTitle(assetType+" - Compliance", intent.Scope, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, map[string]any{"assetType": assetType}),
	}, nil
}

// docTypes maps intent subjects to stored document types. Unknown subjects
// fall through to their uppercase form.
var docTypes = map[string]string{
	"eicr":      "EICR",
	"fra":       "FRA",
	"ews1":      "EWS1",
	"insurance": "insurance",
	"documents": "all",
}

func (s *HandlerSet) documentsLatestByType(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	docType, ok := docTypes[intent.Subject]
	if !ok {
		docType = strings.ToUpper(intent.Subject)
	}

	data, err := s.Documents.LatestByType(ctx, agencyID, docType, intent.BuildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest documents: %w", err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Building", "Doc Type", "Date", "Filename"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		rows = append(rows, map[string]any{
			"Building": buildingLabel(building, row.BuildingID),
			"Doc Type": row.DocType,
			"Date":     ukDate(row.DocDate),
			"Filename": row.Filename,
		})
	}

	title := GenerateTitle(fmt.Sprintf("Latest %s Documents", docType), intent.Scope, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, map[string]any{"docType": docType}),
	}, nil
}

func (s *HandlerSet) documentsAllForBuilding(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error) {
	if intent.BuildingID == nil {
		return nil, fmt.Errorf("building id is required for building-specific document reports")
	}

	data, err := s.Documents.AllForBuilding(ctx, agencyID, *intent.BuildingID, intent.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch building documents: %w", err)
	}

	building := s.buildingContext(ctx, agencyID, intent.BuildingID)

	columns := []string{"Doc Type", "Date", "Filename", "Summary"}
	rows := make([]map[string]any, 0, len(data))
	for _, row := range data {
		summary := "N/A"
		if row.HasSummary {
			summary = "Available"
		}
		rows = append(rows, map[string]any{
			"Doc Type": row.DocType,
			"Date":     ukDate(row.DocDate),
			"Filename": row.Filename,
			"Summary":  summary,
		})
	}

	title := GenerateTitle("All Documents", models.ScopeBuilding, buildingName(building))
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: columns,
		Rows:    rows,
		Meta:    buildMeta(title, period, len(rows), building, nil),
	}, nil
}

// emailsInboxOverview is a stub until the inbox pipeline lands. It returns
// an empty, well-formed result so callers get a table shape, not an error.
func emailsInboxOverview(_ context.Context, intent *models.ReportIntent, _ uuid.UUID) (*models.ReportResult, error) {
	title := GenerateTitle("Inbox Overview", intent.Scope, "")
	period := FormatPeriod(intent.Period, time.Now())

	return &models.ReportResult{
		Columns: []string{"Date", "From", "Subject", "Status"},
		Rows:    []map[string]any{},
		Meta: models.ReportMeta{
			Title:     title,
			Period:    period,
			TotalRows: 0,
			Extra:     map[string]any{"note": "Email inbox overview not yet implemented"},
		},
	}, nil
}
