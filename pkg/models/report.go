package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportScope is the granularity a report is computed at.
type ReportScope string

const (
	ScopeBuilding ReportScope = "building"
	ScopeUnit     ReportScope = "unit"
	ScopeAgency   ReportScope = "agency"
)

// ReportFormat is the requested output shape for a report.
type ReportFormat string

const (
	FormatTable ReportFormat = "table"
	FormatCSV   ReportFormat = "csv"
	FormatPDF   ReportFormat = "pdf"
)

// Period is the reporting window. Until is set only when the user gave an
// explicit from/to range; calendar phrases ("this quarter") set Since only.
type Period struct {
	Since time.Time  `json:"since"`
	Until *time.Time `json:"until,omitempty"`
}

// ReportIntent is the structured classification of a free-text report request.
// Produced once per query by the intent parser and consumed once by the engine.
type ReportIntent struct {
	Subject    string       `json:"subject"`
	Scope      ReportScope  `json:"scope"`
	BuildingID *uuid.UUID   `json:"building_id,omitempty"`
	UnitID     *uuid.UUID   `json:"unit_id,omitempty"`
	Period     Period       `json:"period"`
	Format     ReportFormat `json:"format"`
	RawText    string       `json:"raw_text"`
	Confidence float64      `json:"confidence"`
}

// ReportMeta carries report-level metadata. Extra is an open bag for
// handler-specific fields (building name, asset type, notes); Columns and
// Rows on ReportResult stay strictly shaped.
type ReportMeta struct {
	Title     string         `json:"title"`
	Period    string         `json:"period"`
	TotalRows int            `json:"total_rows"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// ReportResult is the tabular outcome of one handler invocation.
// Rows are read-only snapshots keyed by column name.
type ReportResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Meta    ReportMeta       `json:"meta"`
}

// Pagination describes a slice of a table result. Pages are 1-indexed.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalRows  int `json:"total_rows"`
}

// TablePayload is a paginated table for the response envelope.
type TablePayload struct {
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	Pagination Pagination       `json:"pagination"`
}

// FilePayload carries rendered CSV or PDF content for the response envelope.
type FilePayload struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// ReportAction is a follow-up action offered alongside a report, such as a
// signed download link for an exported CSV.
type ReportAction struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ReportEnvelope is the final response shape serialized to the caller.
// Exactly one of Table, CSV, PDF is populated, matching the requested format.
type ReportEnvelope struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Period  string         `json:"period"`
	Table   *TablePayload  `json:"table,omitempty"`
	CSV     *FilePayload   `json:"csv,omitempty"`
	PDF     *FilePayload   `json:"pdf,omitempty"`
	Actions []ReportAction `json:"actions,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ReportStatistics is opportunistic introspection over result rows.
// StatusCounts is present in Summary only when rows carry a "Status" column,
// OverdueCount only when rows carry "Days Overdue".
type ReportStatistics struct {
	TotalRows int            `json:"total_rows"`
	HasData   bool           `json:"has_data"`
	Summary   map[string]any `json:"summary,omitempty"`
}
