package intent

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blociq/blociq-engine/pkg/models"
)

// fixedNow is a Wednesday in mid-August, Q3.
var fixedNow = time.Date(2025, time.August, 13, 10, 30, 0, 0, time.UTC)

func TestDetectReport_EmailDraftingExcluded(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"draft an email", "draft an email about the overdue compliance report"},
		{"write a response", "write a response to the leaseholder"},
		{"compose a message", "compose a message summarising the EICR list"},
		{"draft reply", "please draft a reply email with a summary of overdue compliance"},
		{"reply to email", "reply to email from the freeholder about the FRA report"},
		{"respond to email", "respond to the leaseholder's email about insurance"},
		{"on behalf", "write an email on behalf of the building manager"},
		{"draft a reply with arrears summary", "draft a reply summarising service charge arrears"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectReport(tt.text, nil, nil, fixedNow)
			assert.Nil(t, result, "email drafting text must never classify as a report")
		})
	}
}

func TestDetectReport_NoActionWord(t *testing.T) {
	result := DetectReport("what is the weather like", nil, nil, fixedNow)
	assert.Nil(t, result)
}

func TestDetectReport_ConfidenceFloor(t *testing.T) {
	// A bare action word with all-default classification scores exactly 0.3
	// and must be retained.
	result := DetectReport("report", nil, nil, fixedNow)
	require.NotNil(t, result)
	assert.InDelta(t, 0.3, result.Confidence, 0.0001)
	assert.Equal(t, "compliance", result.Subject)
	assert.Equal(t, models.ScopeBuilding, result.Scope)
	assert.Equal(t, models.FormatTable, result.Format)
}

func TestDetectReport_Deterministic(t *testing.T) {
	text := "export the overdue EICR report as csv for the whole portfolio"
	first := DetectReport(text, nil, nil, fixedNow)
	require.NotNil(t, first)

	for i := 0; i < 5; i++ {
		again := DetectReport(text, nil, nil, fixedNow)
		require.NotNil(t, again)
		assert.Equal(t, first, again)
	}
}

func TestDetectReport_ComplianceOverviewForBuilding(t *testing.T) {
	buildingID := uuid.New()
	result := DetectReport("Show me the compliance overview for this building", &buildingID, nil, fixedNow)

	require.NotNil(t, result)
	assert.Equal(t, "compliance", result.Subject)
	assert.Equal(t, models.ScopeBuilding, result.Scope)
	assert.Equal(t, models.FormatTable, result.Format)
	require.NotNil(t, result.BuildingID)
	assert.Equal(t, buildingID, *result.BuildingID)
	// action word 0.3 + "this" period cue 0.2
	assert.InDelta(t, 0.5, result.Confidence, 0.0001)
}

func TestDetectReport_PortfolioCSVExport(t *testing.T) {
	result := DetectReport("Export the overdue EICR report as CSV for the whole portfolio", nil, nil, fixedNow)

	require.NotNil(t, result)
	assert.Equal(t, models.ScopeAgency, result.Scope)
	assert.Equal(t, models.FormatCSV, result.Format)
	// "overdue" (7 chars) outscores "eicr" (4 chars) on keyword length, and
	// the tie between the compliance and overdue vocabularies keeps the
	// earlier entry.
	assert.Equal(t, "compliance", result.Subject)
}

func TestDetectSubject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		subject string
	}{
		{"default", "show me a report", "compliance"},
		{"eicr", "get the eicr report", "eicr"},
		{"fire risk beats fra", "show the fire risk assessment report", "fra"},
		{"insurance schedule", "list the insurance schedule", "insurance"},
		{"documents", "show me the paperwork", "documents"},
		{"emails", "list communications", "emails"},
		{"upcoming", "what inspections are due soon, show a list", "upcoming"},
		{"longest keyword wins", "show electrical installation overview", "eicr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.subject, detectSubject(tt.text))
		})
	}
}

func TestDetectScope(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		scope models.ReportScope
	}{
		{"default building", "compliance report", models.ScopeBuilding},
		{"unit beats building", "report for flat 3 in Ashwood House building", models.ScopeUnit},
		{"portfolio", "overview across the portfolio", models.ScopeAgency},
		{"everywhere", "show compliance everywhere", models.ScopeAgency},
		{"block", "report for the block", models.ScopeBuilding},
		{"tenancy", "report on the tenancy", models.ScopeUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.scope, detectScope(tt.text))
		})
	}
}

func TestDetectPeriod(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantSince time.Time
		wantUntil *time.Time
	}{
		{
			name:      "today",
			text:      "report for today",
			wantSince: time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yesterday",
			text:      "show yesterday's summary",
			wantSince: time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "this week starts sunday",
			text:      "overview for this week",
			wantSince: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "this month",
			text:      "list for this month",
			wantSince: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "this quarter",
			text:      "dashboard for this quarter",
			wantSince: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "year to date",
			text:      "ytd compliance report",
			wantSince: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "default is start of quarter",
			text:      "compliance report",
			wantSince: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "explicit range",
			text:      "report from 01/02/2025 to 28/02/2025",
			wantSince: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantUntil: timePtr(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:      "single from date with dashes",
			text:      "report since 15-03-2025",
			wantSince: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "two digit year expands",
			text:      "report from 01/06/24",
			wantSince: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := detectPeriod(tt.text, fixedNow)
			assert.Equal(t, tt.wantSince, period.Since)
			if tt.wantUntil == nil {
				assert.Nil(t, period.Until)
			} else {
				require.NotNil(t, period.Until)
				assert.Equal(t, *tt.wantUntil, *period.Until)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		format models.ReportFormat
	}{
		{"default table", "compliance report", models.FormatTable},
		{"csv", "export as csv", models.FormatCSV},
		{"spreadsheet", "give me a spreadsheet", models.FormatCSV},
		{"pdf", "print a pdf", models.FormatPDF},
		{"csv beats table word", "download the list", models.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.format, detectFormat(tt.text))
		})
	}
}

func TestDetectReport_ConfidenceCappedAtOne(t *testing.T) {
	result := DetectReport("export this month's overdue eicr csv report for the whole portfolio", nil, nil, fixedNow)
	require.NotNil(t, result)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestParseUKDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"slash format", "25/12/2025", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"dash format", "25-12-2025", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"two digit year", "01/01/99", time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "not-a-date", time.Time{}, false},
		{"month out of range", "01/13/2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseUKDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
