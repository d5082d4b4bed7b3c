// Package intent classifies free text into structured report or add-in
// requests. The classifiers are handcrafted keyword heuristics over a closed
// vocabulary; the scoring formula and precedence order are load-bearing, so
// downstream behaviour depends on them staying exactly as written.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blociq/blociq-engine/pkg/models"
)

// emailDraftingPatterns are checked before any report classification. A
// request to draft correspondence is never a report request, no matter how
// many report action words it also contains.
var emailDraftingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(write|draft|compose|create|generate|respond|reply)\s+(a|an|the)?\s*(email|response|letter|message)`),
	regexp.MustCompile(`(?i)\b(write|draft)\s+(response|reply)`),
	regexp.MustCompile(`(?i)\bresponse\s+email\b`),
	regexp.MustCompile(`(?i)\bemail\s+on\s+behalf\b`),
	regexp.MustCompile(`(?i)\bwrite.*on behalf`),
	regexp.MustCompile(`(?i)\breply\s+to\s+email`),
	regexp.MustCompile(`(?i)\brespond\s+to.*email`),
}

var reportActionWords = []string{
	"report", "summary", "overview", "dashboard", "list", "table", "export",
	"show", "get", "generate", "create", "display", "view",
}

// subjectKeywords is ordered; ties on score keep the earlier subject.
var subjectKeywords = []struct {
	subject  string
	keywords []string
}{
	{"compliance", []string{"compliance", "compliant", "non-compliant", "overdue", "upcoming"}},
	{"eicr", []string{"eicr", "electrical", "electrical report", "electrical installation"}},
	{"fra", []string{"fra", "fire risk", "fire risk assessment", "fire safety"}},
	{"ews1", []string{"ews1", "ews", "external wall", "external wall system", "fraew"}},
	{"insurance", []string{"insurance", "policy", "policy schedule", "insurance schedule"}},
	{"documents", []string{"documents", "docs", "files", "paperwork"}},
	{"emails", []string{"emails", "messages", "communications"}},
	{"overdue", []string{"overdue", "late", "expired", "past due"}},
	{"upcoming", []string{"upcoming", "due soon", "scheduled", "pending"}},
}

var scopeKeywords = map[models.ReportScope][]string{
	models.ScopeBuilding: {"building", "house", "block", "property"},
	models.ScopeUnit:     {"unit", "flat", "apartment", "tenancy"},
	models.ScopeAgency:   {"portfolio", "all buildings", "agency", "company", "everywhere"},
}

// formatKeywords is ordered; csv and pdf cues outrank the table defaults
// ("list", "view") which double as action words.
var formatKeywords = []struct {
	format   models.ReportFormat
	keywords []string
}{
	{models.FormatCSV, []string{"csv", "spreadsheet", "excel", "download"}},
	{models.FormatPDF, []string{"pdf", "document", "print"}},
	{models.FormatTable, []string{"table", "list", "view", "display"}},
}

var (
	dateRangePattern  = regexp.MustCompile(`(?i)(?:from|since)\s+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})\s+(?:to|until)\s+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	singleDatePattern = regexp.MustCompile(`(?i)(?:from|since)\s+(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
)

// DetectReport classifies free text as a report request. It returns nil when
// the text is an email-drafting request, carries no report action word, or
// scores below the 0.3 confidence floor. The now parameter anchors relative
// period phrases so classification is deterministic for a fixed date.
func DetectReport(text string, buildingID, unitID *uuid.UUID, now time.Time) *models.ReportIntent {
	for _, pattern := range emailDraftingPatterns {
		if pattern.MatchString(text) {
			return nil
		}
	}

	if !hasReportActionWord(text) {
		return nil
	}

	subject := detectSubject(text)
	scope := detectScope(text)
	period := detectPeriod(text, now)
	format := detectFormat(text)

	confidence := scoreConfidence(text, subject, scope)
	if confidence < 0.3 {
		return nil
	}

	return &models.ReportIntent{
		Subject:    subject,
		Scope:      scope,
		BuildingID: buildingID,
		UnitID:     unitID,
		Period:     period,
		Format:     format,
		RawText:    text,
		Confidence: confidence,
	}
}

func hasReportActionWord(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range reportActionWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// detectSubject picks the subject whose matched keyword is longest relative
// to the input, defaulting to "compliance" when nothing matches.
func detectSubject(text string) string {
	lowered := strings.ToLower(text)
	bestSubject := ""
	bestScore := 0.0

	for _, entry := range subjectKeywords {
		for _, keyword := range entry.keywords {
			if !strings.Contains(lowered, keyword) {
				continue
			}
			score := float64(len(keyword)) / float64(len(lowered))
			if score > bestScore {
				bestScore = score
				bestSubject = entry.subject
			}
		}
	}

	if bestSubject == "" {
		return "compliance"
	}
	return bestSubject
}

// detectScope checks unit cues before building before agency, defaulting to
// building. "flat 3 in Ashwood House" is a unit question even though a
// building is named.
func detectScope(text string) models.ReportScope {
	lowered := strings.ToLower(text)

	for _, scope := range []models.ReportScope{models.ScopeUnit, models.ScopeBuilding, models.ScopeAgency} {
		for _, keyword := range scopeKeywords[scope] {
			if strings.Contains(lowered, keyword) {
				return scope
			}
		}
	}
	return models.ScopeBuilding
}

// periodPhrases maps calendar phrases to a start date. Order matters: the
// first phrase contained in the text wins.
var periodPhrases = []struct {
	keywords []string
	since    func(now time.Time) time.Time
}{
	{[]string{"today", "this day"}, func(now time.Time) time.Time {
		return dateOnly(now)
	}},
	{[]string{"yesterday"}, func(now time.Time) time.Time {
		return dateOnly(now.AddDate(0, 0, -1))
	}},
	{[]string{"this week", "current week", "week to date"}, func(now time.Time) time.Time {
		return dateOnly(now.AddDate(0, 0, -int(now.Weekday())))
	}},
	{[]string{"this month", "current month", "month to date"}, func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}},
	{[]string{"this quarter", "current quarter", "quarter to date"}, startOfQuarter},
	{[]string{"ytd", "year to date", "this year", "current year"}, func(now time.Time) time.Time {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}},
}

// detectPeriod resolves the reporting window. Calendar phrases set Since
// only; Until is populated solely by an explicit "from X to Y" range. The
// fallback is the start of the current quarter.
func detectPeriod(text string, now time.Time) models.Period {
	lowered := strings.ToLower(text)

	for _, phrase := range periodPhrases {
		for _, keyword := range phrase.keywords {
			if strings.Contains(lowered, keyword) {
				return models.Period{Since: phrase.since(now)}
			}
		}
	}

	if m := dateRangePattern.FindStringSubmatch(text); m != nil {
		since, okSince := parseUKDate(m[1])
		until, okUntil := parseUKDate(m[2])
		if okSince && okUntil {
			return models.Period{Since: since, Until: &until}
		}
	}

	if m := singleDatePattern.FindStringSubmatch(text); m != nil {
		if since, ok := parseUKDate(m[1]); ok {
			return models.Period{Since: since}
		}
	}

	return models.Period{Since: startOfQuarter(now)}
}

// DefaultPeriod is the window applied when a request names no period. It
// runs from the start of the current quarter.
func DefaultPeriod(now time.Time) models.Period {
	return models.Period{Since: startOfQuarter(now)}
}

func startOfQuarter(now time.Time) time.Time {
	quarter := (int(now.Month()) - 1) / 3
	return time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseUKDate parses DD/MM/YYYY or DD-MM-YYYY. Two-digit years expand to
// the 2000s.
func parseUKDate(value string) (time.Time, bool) {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	if errDay != nil || errMonth != nil {
		return time.Time{}, false
	}

	yearStr := parts[2]
	if len(yearStr) == 2 {
		yearStr = "20" + yearStr
	}
	year, errYear := strconv.Atoi(yearStr)
	if errYear != nil {
		return time.Time{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func detectFormat(text string) models.ReportFormat {
	lowered := strings.ToLower(text)

	for _, entry := range formatKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.format
			}
		}
	}
	return models.FormatTable
}

// scoreConfidence sums fixed bonuses for each specific signal and caps at
// 1.0. A bare default classification (compliance/building/quarter/table)
// scores 0.3 from the action word alone, which sits exactly on the floor
// and is retained.
func scoreConfidence(text, subject string, scope models.ReportScope) float64 {
	lowered := strings.ToLower(text)
	score := 0.0

	if hasReportActionWord(lowered) {
		score += 0.3
	}
	if subject != "compliance" {
		score += 0.2
	}
	if scope != models.ScopeBuilding {
		score += 0.1
	}
	if strings.Contains(lowered, "this") || strings.Contains(lowered, "last") ||
		strings.Contains(lowered, "quarter") || strings.Contains(lowered, "month") {
		score += 0.2
	}
	if strings.Contains(lowered, "csv") || strings.Contains(lowered, "pdf") ||
		strings.Contains(lowered, "export") {
		score += 0.2
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// SupportedSubjects lists every subject the classifier can emit.
func SupportedSubjects() []string {
	subjects := make([]string, 0, len(subjectKeywords))
	for _, entry := range subjectKeywords {
		subjects = append(subjects, entry.subject)
	}
	return subjects
}

// SupportedScopes lists the recognised report scopes.
func SupportedScopes() []models.ReportScope {
	return []models.ReportScope{models.ScopeBuilding, models.ScopeUnit, models.ScopeAgency}
}

// SupportedFormats lists the recognised output formats.
func SupportedFormats() []models.ReportFormat {
	return []models.ReportFormat{models.FormatCSV, models.FormatPDF, models.FormatTable}
}
