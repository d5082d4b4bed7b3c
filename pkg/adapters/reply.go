package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/intent"
	"github.com/blociq/blociq-engine/pkg/llm"
	"github.com/blociq/blociq-engine/pkg/models"
	"github.com/blociq/blociq-engine/pkg/repositories"
)

const replySystemPrompt = "You draft professional property-management email replies in British English. " +
	"Only state facts the prompt provides; where a fact is missing, say it is not specified in the records. " +
	"Stay strictly within UK leasehold and building-safety topics."

// ReplySettings carries per-user reply preferences.
type ReplySettings struct {
	Signature string
	Tone      string
}

// ReplyAdapter drafts email replies from stored facts.
type ReplyAdapter interface {
	GenerateReply(ctx context.Context, agencyID uuid.UUID, input string, msg *models.OutlookMessage, settings *ReplySettings) *models.ReplyResult
}

type replyAdapter struct {
	buildings repositories.BuildingRepository
	leases    repositories.LeaseRepository
	completer llm.Client
	logger    *zap.Logger
	now       func() time.Time
}

var _ ReplyAdapter = (*replyAdapter)(nil)

// NewReplyAdapter creates the add-in reply adapter. completer may be nil;
// replies are then fully template-driven.
func NewReplyAdapter(buildings repositories.BuildingRepository, leases repositories.LeaseRepository, completer llm.Client, logger *zap.Logger) ReplyAdapter {
	return &replyAdapter{
		buildings: buildings,
		leases:    leases,
		completer: completer,
		logger:    logger.Named("addin-reply"),
		now:       time.Now,
	}
}

// GenerateReply builds a subject suggestion and an HTML body from the
// question topic and whatever lease or building facts resolve. It always
// returns a complete reply; lookup failures just mean fewer facts.
func (a *replyAdapter) GenerateReply(ctx context.Context, agencyID uuid.UUID, input string, msg *models.OutlookMessage, settings *ReplySettings) *models.ReplyResult {
	buildingCtx := intent.ExtractBuildingContext(input, msg)

	var building *models.Building
	var summary *models.LeaseSummary
	if buildingCtx.BuildingName != "" {
		if found, err := a.buildings.FindByName(ctx, agencyID, buildingCtx.BuildingName); err == nil {
			building = found
			if s, err := a.leases.LatestSummary(ctx, agencyID, building.ID); err == nil {
				summary = s
			}
		}
	}

	var body strings.Builder
	var usedFacts []string
	var sources []string

	fmt.Fprintf(&body, "<p>%s</p>\n\n", greeting(msg))

	lowered := strings.ToLower(input)
	switch {
	case strings.Contains(lowered, "section 20") || strings.Contains(lowered, "s20"):
		usedFacts = section20Body(&body, summary)
	case strings.Contains(lowered, "repair") || strings.Contains(lowered, "maintenance"):
		usedFacts = repairBody(&body, summary)
	case strings.Contains(lowered, "service charge"):
		usedFacts = serviceChargeBody(&body, summary)
	case strings.Contains(lowered, "compliance"):
		complianceBody(&body)
	case strings.Contains(lowered, "safety"):
		safetyBody(&body)
	default:
		usedFacts = a.genericBody(ctx, &body, input, building)
	}

	if summary != nil {
		sources = append(sources, "Lease Lab Analysis")
		fmt.Fprintf(&body, "<p><em>Reference: Lease Lab Analysis - %s document</em></p>\n\n", summary.DocType)
	}
	if building != nil {
		sources = append(sources, "Building Records")
		fmt.Fprintf(&body, "<p><strong>Building:</strong> %s</p>\n\n", building.Name)
	}

	signature := "BlocIQ Property Management"
	if settings != nil && settings.Signature != "" {
		signature = settings.Signature
	}
	fmt.Fprintf(&body, "<p>Kind regards,<br>%s</p>", signature)

	confidence := models.ConfidenceMedium
	if len(usedFacts) > 0 {
		confidence = models.ConfidenceHigh
	}

	return &models.ReplyResult{
		SubjectSuggestion: subjectSuggestion(input, msg),
		BodyHTML:          body.String(),
		UsedFacts:         usedFacts,
		Sources:           sources,
		Metadata: models.ReplyMetadata{
			GeneratedAt: a.now(),
			FactCount:   len(usedFacts),
			SourceCount: len(sources),
			Confidence:  confidence,
		},
	}
}

// subjectSuggestion reuses the original subject when present, otherwise
// derives one from the question topic.
func subjectSuggestion(input string, msg *models.OutlookMessage) string {
	if msg != nil && msg.Subject != "" {
		if strings.HasPrefix(strings.ToLower(msg.Subject), "re:") {
			return msg.Subject
		}
		return "Re: " + msg.Subject
	}

	lowered := strings.ToLower(input)
	switch {
	case strings.Contains(lowered, "section 20") || strings.Contains(lowered, "s20"):
		return "Re: Section 20 Consultation Requirements"
	case strings.Contains(lowered, "repair") || strings.Contains(lowered, "maintenance"):
		return "Re: Repair Obligations"
	case strings.Contains(lowered, "service charge"):
		return "Re: Service Charge Query"
	case strings.Contains(lowered, "compliance"):
		return "Re: Compliance Matter"
	case strings.Contains(lowered, "safety"):
		return "Re: Building Safety"
	default:
		return "Re: Property Management Query"
	}
}

// greeting derives a salutation from the sender address.
func greeting(msg *models.OutlookMessage) string {
	if msg == nil || msg.From == "" {
		return "Dear Sir/Madam,"
	}

	local, _, found := strings.Cut(msg.From, "@")
	if !found || local == "" {
		return "Dear Sir/Madam,"
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return fmt.Sprintf("Dear %s,", strings.Join(words, " "))
}

func section20Body(body *strings.Builder, summary *models.LeaseSummary) []string {
	var usedFacts []string
	body.WriteString("<p>Thank you for your enquiry regarding Section 20 consultation requirements.</p>\n\n")

	if summary != nil && summary.Section20 != nil {
		fact := fmt.Sprintf("Section 20 threshold: £%.2f per leaseholder", summary.Section20.ThresholdAmount)
		usedFacts = append(usedFacts, fact)
		fmt.Fprintf(body, "<p>Based on the lease analysis, the Section 20 threshold for this building is £%.2f per leaseholder.</p>\n\n", summary.Section20.ThresholdAmount)

		if summary.Section20.ConsultationRequired {
			body.WriteString("<p>The proposed works require Section 20 consultation as they exceed the statutory threshold. The consultation process includes:</p>\n")
			body.WriteString("<ul>\n")
			body.WriteString("<li>Notice of Intention to carry out works</li>\n")
			body.WriteString("<li>Obtaining at least two estimates</li>\n")
			body.WriteString("<li>Notice of Estimates to leaseholders</li>\n")
			body.WriteString("<li>Consideration of leaseholder observations</li>\n")
			body.WriteString("</ul>\n\n")
		}
	} else {
		body.WriteString("<p>Section 20 consultation is required for works costing more than £250 per leaseholder or long-term agreements over £100 per leaseholder per year.</p>\n\n")
		body.WriteString("<p>" + notSpecified + "</p>\n\n")
	}

	body.WriteString("<p>Please let me know if you require any further clarification on the consultation process.</p>\n\n")
	return usedFacts
}

func repairBody(body *strings.Builder, summary *models.LeaseSummary) []string {
	var usedFacts []string
	body.WriteString("<p>Thank you for your enquiry regarding repair obligations.</p>\n\n")

	var matched *models.RepairEntry
	if summary != nil {
		for i, entry := range summary.RepairMatrix {
			item := strings.ToLower(entry.Item)
			if strings.Contains(item, "repair") || strings.Contains(item, "maintenance") {
				matched = &summary.RepairMatrix[i]
				break
			}
		}
	}

	switch {
	case matched != nil:
		fact := fmt.Sprintf("%s: %s", matched.Item, matched.ResponsibleParty)
		usedFacts = append(usedFacts, fact)
		fmt.Fprintf(body, "<p>Based on the lease analysis, %s is the responsibility of %s.</p>\n\n", matched.Item, matched.ResponsibleParty)
	case summary != nil:
		body.WriteString("<p>The lease analysis does not specify repair obligations for this particular item.</p>\n\n")
	default:
		body.WriteString("<p>Repair obligations depend on whether the item is demised or common parts, as defined in the lease.</p>\n\n")
		body.WriteString("<p>" + notSpecified + "</p>\n\n")
	}

	body.WriteString("<p>For specific repair matters, I recommend reviewing the relevant lease clauses and arranging an inspection if necessary.</p>\n\n")
	return usedFacts
}

func serviceChargeBody(body *strings.Builder, summary *models.LeaseSummary) []string {
	var usedFacts []string
	body.WriteString("<p>Thank you for your enquiry regarding service charges.</p>\n\n")

	if summary != nil && summary.ServiceCharge != nil {
		sc := summary.ServiceCharge
		fact := fmt.Sprintf("Annual service charge: £%.2f", sc.AnnualAmount)
		usedFacts = append(usedFacts, fact)
		fmt.Fprintf(body, "<p>Based on the lease analysis, the annual service charge is £%.2f per annum.</p>\n\n", sc.AnnualAmount)

		if sc.PaymentFrequency != "" {
			fmt.Fprintf(body, "<p>Payment frequency: %s</p>\n\n", sc.PaymentFrequency)
		}
	} else {
		body.WriteString("<p>Service charge details vary by lease and building specifications.</p>\n\n")
		body.WriteString("<p>" + notSpecified + "</p>\n\n")
	}

	body.WriteString("<p>For detailed service charge breakdowns, please refer to the annual accounts and budget statements.</p>\n\n")
	return usedFacts
}

func complianceBody(body *strings.Builder) {
	body.WriteString("<p>Thank you for your enquiry regarding compliance matters.</p>\n\n")
	body.WriteString("<p>Compliance requirements for residential buildings include:</p>\n")
	body.WriteString("<ul>\n")
	body.WriteString("<li>Fire Risk Assessments (FRA)</li>\n")
	body.WriteString("<li>Electrical Installation Condition Reports (EICR)</li>\n")
	body.WriteString("<li>Gas Safety Certificates</li>\n")
	body.WriteString("<li>Asbestos Management Plans</li>\n")
	body.WriteString("<li>Building Insurance</li>\n")
	body.WriteString("</ul>\n\n")
	body.WriteString("<p>" + notSpecified + "</p>\n\n")
	body.WriteString("<p>Please let me know if you need specific compliance information for this building.</p>\n\n")
}

func safetyBody(body *strings.Builder) {
	body.WriteString("<p>Thank you for your enquiry regarding building safety.</p>\n\n")
	body.WriteString("<p>Building safety requirements include:</p>\n")
	body.WriteString("<ul>\n")
	body.WriteString("<li>Fire Risk Assessments (FRA)</li>\n")
	body.WriteString("<li>Fire Safety Systems maintenance</li>\n")
	body.WriteString("<li>Emergency lighting and signage</li>\n")
	body.WriteString("<li>Fire door inspections</li>\n")
	body.WriteString("<li>External wall system assessments (EWS1)</li>\n")
	body.WriteString("</ul>\n\n")
	body.WriteString("<p>" + notSpecified + "</p>\n\n")
	body.WriteString("<p>For urgent safety matters, please contact the building manager or emergency services immediately.</p>\n\n")
}

// genericBody handles topics with no dedicated template. When a completion
// client is configured it drafts the middle paragraphs; otherwise the
// standard not-specified wording stands in.
func (a *replyAdapter) genericBody(ctx context.Context, body *strings.Builder, input string, building *models.Building) []string {
	body.WriteString("<p>Thank you for your enquiry.</p>\n\n")

	if a.completer != nil {
		prompt := fmt.Sprintf("Draft two short paragraphs replying to this property-management enquiry: %q", input)
		if building != nil {
			prompt += fmt.Sprintf(" The enquiry concerns the building %q.", building.Name)
		}

		generated, err := a.completer.GenerateResponse(ctx, prompt, replySystemPrompt, 0.3)
		if err == nil && generated != "" {
			fmt.Fprintf(body, "<p>%s</p>\n\n", strings.TrimSpace(generated))
			body.WriteString("<p>Please let me know if you require any further assistance.</p>\n\n")
			return nil
		}
		a.logger.Warn("Reply completion failed, using template", zap.Error(err))
	}

	body.WriteString("<p>" + notSpecified + "</p>\n\n")
	body.WriteString("<p>Please let me know if you require any further assistance.</p>\n\n")
	return nil
}
