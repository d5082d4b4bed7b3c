// Package reports resolves classified report intents to handlers, executes
// them under tenant isolation, and shapes results for output.
package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blociq/blociq-engine/pkg/models"
)

// HandlerFunc executes one report query. Implementations must scope every
// query to agencyID; it is the only cross-tenant isolation guarantee.
type HandlerFunc func(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (*models.ReportResult, error)

// Handler is a registered report generator, keyed by "<subject>.<variant>".
type Handler struct {
	ID          string
	Name        string
	Description string
	Run         HandlerFunc
}

// Registry maps handler ids to handlers. It is built once at bootstrap and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register inserts a handler by id. The last registration for an id wins.
func (r *Registry) Register(h Handler) {
	r.handlers[h.ID] = h
}

var complianceVariants = map[string]string{
	"compliance": "overview",
	"overdue":    "overdue",
	"upcoming":   "upcoming",
}

var documentVariants = map[string]string{
	"documents": "allForBuilding",
	"eicr":      "latestByType",
	"fra":       "latestByType",
	"ews1":      "latestByType",
	"insurance": "latestByType",
}

// Find resolves a subject and scope to a handler. Resolution order:
// exact "<subject>.<scope>", then "<subject>.overview", then the compliance
// family, then the documents family. Returns nil when nothing matches.
func (r *Registry) Find(subject string, scope models.ReportScope) *Handler {
	if h, ok := r.handlers[fmt.Sprintf("%s.%s", subject, scope)]; ok {
		return &h
	}

	if h, ok := r.handlers[subject+".overview"]; ok {
		return &h
	}

	if variant, ok := complianceVariants[subject]; ok {
		if h, ok := r.handlers["compliance."+variant]; ok {
			return &h
		}
	}

	if variant, ok := documentVariants[subject]; ok {
		if h, ok := r.handlers["documents."+variant]; ok {
			return &h
		}
	}

	return nil
}

// ValidateIntent checks an intent is structurally complete and resolvable.
// An empty agencyID fails validation: tenant isolation depends on it and the
// engine must fail closed rather than run an unscoped query. Errors
// accumulate so the caller sees every problem at once.
func (r *Registry) ValidateIntent(intent *models.ReportIntent, agencyID uuid.UUID) (bool, []string) {
	var errs []string

	if intent == nil {
		return false, []string{"intent is required"}
	}

	if agencyID == uuid.Nil {
		errs = append(errs, "agency id is required")
	}
	if intent.Subject == "" {
		errs = append(errs, "subject is required")
	}
	if intent.Scope == "" {
		errs = append(errs, "scope is required")
	}
	if intent.Period.Since.IsZero() {
		errs = append(errs, "period since date is required")
	}
	if intent.Format == "" {
		errs = append(errs, "format is required")
	}

	if intent.Subject != "" && intent.Scope != "" {
		if r.Find(intent.Subject, intent.Scope) == nil {
			errs = append(errs, fmt.Sprintf("no report handler found for subject: %s, scope: %s", intent.Subject, intent.Scope))
		}
	}

	return len(errs) == 0, errs
}

// Handlers returns the registered handlers keyed by id.
func (r *Registry) Handlers() map[string]Handler {
	return r.handlers
}
