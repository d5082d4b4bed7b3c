// Package adapters implements the Outlook add-in answer and reply paths.
// Both are domain-locked: out-of-scope topics get a canned refusal, and
// answers are assembled from stored facts, never invented.
package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/glossary"
	"github.com/blociq/blociq-engine/pkg/intent"
	"github.com/blociq/blociq-engine/pkg/models"
	"github.com/blociq/blociq-engine/pkg/repositories"
)

const (
	outOfScopeAnswer = "Out of scope for BlocIQ add-in. I only handle UK leasehold and building-safety topics."
	uploadSuggestion = "Upload the lease document to Lease Lab for detailed analysis"
	notSpecified     = "Not specified in the lease/building records. Upload the document in Lease Lab for a verified analysis."
)

// QAAdapter answers add-in questions from stored facts.
type QAAdapter interface {
	AnswerQuestion(ctx context.Context, agencyID uuid.UUID, input string, msg *models.OutlookMessage) *models.QAResult
}

type qaAdapter struct {
	buildings repositories.BuildingRepository
	leases    repositories.LeaseRepository
	logger    *zap.Logger
}

var _ QAAdapter = (*qaAdapter)(nil)

// NewQAAdapter creates the add-in Q&A adapter.
func NewQAAdapter(buildings repositories.BuildingRepository, leases repositories.LeaseRepository, logger *zap.Logger) QAAdapter {
	return &qaAdapter{
		buildings: buildings,
		leases:    leases,
		logger:    logger.Named("addin-qa"),
	}
}

// AnswerQuestion walks the answer states in order: scope gate, clarification,
// then building resolution with lease facts preferred over building records
// over the generic templates. Every state returns a complete result; data
// access failures degrade to the generic branch rather than erroring out.
func (a *qaAdapter) AnswerQuestion(ctx context.Context, agencyID uuid.UUID, input string, msg *models.OutlookMessage) *models.QAResult {
	processed := glossary.ProcessUserInput(input)

	if processed.OutOfScope {
		return &models.QAResult{
			Answer:      outOfScopeAnswer,
			Confidence:  models.ConfidenceHigh,
			Sources:     []string{},
			Facts:       []models.Fact{},
			Suggestions: []string{"Ask about property management, lease terms, or building safety instead"},
		}
	}

	if len(processed.NeedsClarification) > 0 {
		token := processed.NeedsClarification[0]
		return &models.QAResult{
			Answer:      fmt.Sprintf("In BlocIQ, %s could mean different things. Could you clarify what you mean by %q?", token, token),
			Confidence:  models.ConfidenceMedium,
			Sources:     []string{},
			Facts:       []models.Fact{},
			Suggestions: []string{"Be more specific about what you're asking about"},
		}
	}

	buildingCtx := intent.ExtractBuildingContext(input, msg)

	var building *models.Building
	if buildingCtx.BuildingName != "" {
		found, err := a.buildings.FindByName(ctx, agencyID, buildingCtx.BuildingName)
		if err == nil {
			building = found
		} else {
			a.logger.Debug("Building lookup failed",
				zap.String("name", buildingCtx.BuildingName),
				zap.Error(err))
		}
	}

	if building != nil {
		if summary, err := a.leases.LatestSummary(ctx, agencyID, building.ID); err == nil {
			return a.leaseSummaryAnswer(input, summary, building)
		}
		return a.buildingAnswer(ctx, agencyID, input, building)
	}

	return genericAnswer(input)
}

// leaseSummaryAnswer assembles facts from the lease extraction matching the
// question's topic.
func (a *qaAdapter) leaseSummaryAnswer(input string, summary *models.LeaseSummary, building *models.Building) *models.QAResult {
	lowered := strings.ToLower(input)
	var facts []models.Fact

	if strings.Contains(lowered, "leaseholder") || strings.Contains(lowered, "tenant") {
		if summary.Leaseholder != nil {
			facts = append(facts, models.Fact{
				Label: "Leaseholder", Value: summary.Leaseholder.Name,
				Source: "Lease Lab", Page: summary.Leaseholder.SourcePage,
			})
		}
	}

	if strings.Contains(lowered, "landlord") || strings.Contains(lowered, "freeholder") {
		if summary.Landlord != nil {
			facts = append(facts, models.Fact{
				Label: "Landlord", Value: summary.Landlord.Name,
				Source: "Lease Lab", Page: summary.Landlord.SourcePage,
			})
		}
	}

	if strings.Contains(lowered, "term") || strings.Contains(lowered, "duration") || strings.Contains(lowered, "years") {
		if summary.Term != nil {
			if summary.Term.StartDate != "" {
				facts = append(facts, models.Fact{
					Label: "Lease Start", Value: summary.Term.StartDate,
					Source: "Lease Lab", Page: summary.Term.SourcePage,
				})
			}
			if summary.Term.EndDate != "" {
				facts = append(facts, models.Fact{
					Label: "Lease End", Value: summary.Term.EndDate,
					Source: "Lease Lab", Page: summary.Term.SourcePage,
				})
			}
		}
	}

	if strings.Contains(lowered, "repair") || strings.Contains(lowered, "maintenance") || strings.Contains(lowered, "windows") {
		for _, entry := range summary.RepairMatrix {
			item := strings.ToLower(entry.Item)
			if strings.Contains(item, "window") || strings.Contains(item, "repair") {
				facts = append(facts, models.Fact{
					Label: "Repair Obligation", Value: fmt.Sprintf("%s: %s", entry.Item, entry.ResponsibleParty),
					Source: "Lease Lab", Page: entry.SourcePage,
				})
				break
			}
		}
	}

	if strings.Contains(lowered, "service charge") || strings.Contains(lowered, "charge") {
		if summary.ServiceCharge != nil {
			facts = append(facts, models.Fact{
				Label: "Service Charge", Value: fmt.Sprintf("£%.2f per annum", summary.ServiceCharge.AnnualAmount),
				Source: "Lease Lab", Page: summary.ServiceCharge.SourcePage,
			})
		}
	}

	if strings.Contains(lowered, "section 20") || strings.Contains(lowered, "s20") {
		if summary.Section20 != nil {
			facts = append(facts, models.Fact{
				Label: "Section 20 Threshold", Value: fmt.Sprintf("£%.2f per leaseholder", summary.Section20.ThresholdAmount),
				Source: "Lease Lab", Page: summary.Section20.SourcePage,
			})
		}
	}

	if len(facts) == 0 {
		return &models.QAResult{
			Answer:      fmt.Sprintf("The lease analysis for %s doesn't specify this information. Upload the document in Lease Lab for a verified analysis.", building.Name),
			Confidence:  models.ConfidenceMedium,
			Sources:     []string{"Lease Lab Analysis"},
			Facts:       []models.Fact{},
			Suggestions: []string{uploadSuggestion},
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the lease analysis for %s:\n\n", building.Name)
	for _, fact := range facts {
		fmt.Fprintf(&sb, "• %s: %s", fact.Label, fact.Value)
		if fact.Page > 0 {
			fmt.Fprintf(&sb, " (Lease Lab, p.%d)", fact.Page)
		}
		sb.WriteString("\n")
	}

	return &models.QAResult{
		Answer:      sb.String(),
		Confidence:  models.ConfidenceHigh,
		Sources:     []string{"Lease Lab Analysis"},
		Facts:       facts,
		Suggestions: []string{},
	}
}

// buildingAnswer assembles facts from building records when no lease
// extraction exists.
func (a *qaAdapter) buildingAnswer(ctx context.Context, agencyID uuid.UUID, input string, building *models.Building) *models.QAResult {
	lowered := strings.ToLower(input)
	var facts []models.Fact

	if strings.Contains(lowered, "address") && building.Address != "" {
		facts = append(facts, models.Fact{Label: "Address", Value: building.Address, Source: "Building Records"})
	}

	if strings.Contains(lowered, "unit") || strings.Contains(lowered, "flat") || strings.Contains(lowered, "apartment") {
		units, err := a.buildings.ListUnits(ctx, agencyID, building.ID)
		if err == nil && len(units) > 0 {
			facts = append(facts, models.Fact{Label: "Total Units", Value: fmt.Sprintf("%d", len(units)), Source: "Building Records"})
		}
	}

	if strings.Contains(lowered, "manager") || strings.Contains(lowered, "contact") {
		if building.ManagerName != "" {
			facts = append(facts, models.Fact{Label: "Building Manager", Value: building.ManagerName, Source: "Building Records"})
		}
	}

	if len(facts) == 0 {
		return &models.QAResult{
			Answer:      fmt.Sprintf("The building records for %s don't specify this information. Upload the lease document in Lease Lab for detailed analysis.", building.Name),
			Confidence:  models.ConfidenceLow,
			Sources:     []string{"Building Records"},
			Facts:       []models.Fact{},
			Suggestions: []string{uploadSuggestion},
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Building information for %s:\n\n", building.Name)
	for _, fact := range facts {
		fmt.Fprintf(&sb, "• %s: %s\n", fact.Label, fact.Value)
	}

	return &models.QAResult{
		Answer:      sb.String(),
		Confidence:  models.ConfidenceMedium,
		Sources:     []string{"Building Records"},
		Facts:       facts,
		Suggestions: []string{uploadSuggestion},
	}
}

// genericAnswer covers questions with no resolvable building. Known topics
// get the statutory background; everything else points at Lease Lab.
func genericAnswer(input string) *models.QAResult {
	lowered := strings.ToLower(input)

	var answer string
	switch {
	case strings.Contains(lowered, "section 20") || strings.Contains(lowered, "s20"):
		answer = "Section 20 refers to the Landlord and Tenant Act 1985 consultation requirements. Works costing more than £250 per leaseholder or long-term agreements over £100 per leaseholder per year require consultation. " + notSpecified
	case strings.Contains(lowered, "repair") || strings.Contains(lowered, "maintenance"):
		answer = "Repair obligations depend on the specific lease terms and whether the item is demised or common parts. " + notSpecified
	case strings.Contains(lowered, "service charge"):
		answer = "Service charge details vary by lease and building. " + notSpecified
	default:
		answer = notSpecified
	}

	return &models.QAResult{
		Answer:      answer,
		Confidence:  models.ConfidenceLow,
		Sources:     []string{},
		Facts:       []models.Fact{},
		Suggestions: []string{uploadSuggestion},
	}
}
