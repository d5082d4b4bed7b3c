// Package glossary holds the static UK leasehold vocabulary used by the
// Outlook add-in adapters. The tables are built once at init and never
// mutated, so concurrent reads need no locking.
package glossary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blociq/blociq-engine/pkg/models"
)

// acronyms is keyed by uppercase acronym string.
var acronyms = map[string]models.AcronymDefinition{}

func init() {
	for _, def := range definitions {
		acronyms[def.Acronym] = def
	}
}

var definitions = []models.AcronymDefinition{
	{Acronym: "S20", FullName: "Section 20", Description: "statutory consultation for qualifying works under the Landlord and Tenant Act 1985", Domain: models.DomainLegal, Context: "Required before major works costing any leaseholder more than £250"},
	{Acronym: "S21", FullName: "Section 21", Description: "no-fault notice seeking possession of an assured shorthold tenancy", Domain: models.DomainLegal},
	{Acronym: "FRA", FullName: "Fire Risk Assessment", Description: "statutory assessment of fire hazards in the common parts of a building", Domain: models.DomainSafety, Context: "Required under the Regulatory Reform (Fire Safety) Order 2005"},
	{Acronym: "EICR", FullName: "Electrical Installation Condition Report", Description: "periodic inspection report on the safety of a fixed electrical installation", Domain: models.DomainCompliance, Context: "Typically renewed every five years"},
	{Acronym: "EWS1", FullName: "External Wall System form", Description: "fire-safety assessment form for the external wall construction of residential buildings", Domain: models.DomainSafety},
	{Acronym: "HRB", FullName: "Higher-Risk Building", Description: "building of at least 18 metres or seven storeys in scope of the Building Safety Act regime", Domain: models.DomainSafety},
	{Acronym: "BSA", FullName: "Building Safety Act", Description: "2022 legislation establishing the building safety regime for higher-risk buildings", Domain: models.DomainLegal},
	{Acronym: "RTM", FullName: "Right to Manage", Description: "statutory right for leaseholders to take over management of their building", Domain: models.DomainLegal},
	{Acronym: "RMC", FullName: "Resident Management Company", Description: "leaseholder-owned company responsible for managing a building", Domain: models.DomainGeneral},
	{Acronym: "RTA", FullName: "Recognised Tenants' Association", Description: "leaseholder association formally recognised for consultation purposes", Domain: models.DomainLegal},
	{Acronym: "AGM", FullName: "Annual General Meeting", Description: "yearly meeting of a management company's members", Domain: models.DomainGeneral},
	{Acronym: "LPE1", FullName: "Leasehold Property Enquiries form", Description: "standard information pack completed by the managing agent during conveyancing", Domain: models.DomainLegal},
	{Acronym: "FH", FullName: "Freeholder", Description: "owner of the freehold interest in a building", Domain: models.DomainGeneral},
	{Acronym: "LH", FullName: "Leaseholder", Description: "holder of a long lease of a flat or unit", Domain: models.DomainGeneral},
	{Acronym: "GR", FullName: "Ground Rent", Description: "rent payable to the freeholder under the terms of the lease", Domain: models.DomainFinancial},
	{Acronym: "SC", FullName: "Service Charge", Description: "leaseholder contribution to the cost of maintaining the building", Domain: models.DomainFinancial},
	{Acronym: "RFL", FullName: "Reserve Fund Levy", Description: "contribution collected into a sinking fund for future major works", Domain: models.DomainFinancial},
	{Acronym: "FTT", FullName: "First-tier Tribunal", Description: "tribunal hearing leasehold disputes including service charge challenges", Domain: models.DomainLegal},
	{Acronym: "LVT", FullName: "Leasehold Valuation Tribunal", Description: "predecessor of the First-tier Tribunal for leasehold matters", Domain: models.DomainLegal},
	{Acronym: "PIB", FullName: "Principal Accountable Person information box", Description: "building safety information required to be displayed in a higher-risk building", Domain: models.DomainSafety},
	{Acronym: "PAP", FullName: "Principal Accountable Person", Description: "entity with overall accountability for building safety in a higher-risk building", Domain: models.DomainSafety},
	{Acronym: "LTA", FullName: "Landlord and Tenant Act", Description: "principal legislation governing the landlord and leaseholder relationship", Domain: models.DomainLegal},
	{Acronym: "PM", FullName: "Property Manager", Description: "person responsible for the day-to-day management of a building", Domain: models.DomainGeneral},
	{Acronym: "MA", FullName: "Managing Agent", Description: "firm appointed to manage a building on behalf of the landlord or RMC", Domain: models.DomainGeneral},
	{Acronym: "WC", FullName: "Water Certificate", Description: "legionella risk assessment certificate for a building water system", Domain: models.DomainCompliance},
	{Acronym: "LOLER", FullName: "Lifting Operations and Lifting Equipment Regulations", Description: "statutory inspection regime for lifts and lifting equipment", Domain: models.DomainCompliance},
	{Acronym: "PAT", FullName: "Portable Appliance Testing", Description: "periodic safety testing of portable electrical appliances", Domain: models.DomainCompliance},
	{Acronym: "ASB", FullName: "Anti-Social Behaviour", Description: "conduct causing nuisance or annoyance to other residents", Domain: models.DomainGeneral},
	{Acronym: "D2B", FullName: "Demise to Boundary", Description: "extent of the property interest granted by the lease", Domain: models.DomainLegal},
}

// outOfScopeTerms is the deny-list of technology and IT topics the add-in
// refuses to answer. Matching is exact (case-insensitive) for single tokens
// and substring for whole-input screening; the two strategies are separate
// on purpose so single-token classification avoids partial-match false
// positives.
var outOfScopeTerms = []string{
	"javascript", "typescript", "python", "react", "kubernetes", "docker",
	"blockchain", "cryptocurrency", "bitcoin", "machine learning",
	"artificial intelligence", "neural network", "programming", "coding",
	"software development", "web development", "database design", "devops",
	"cloud computing", "api development",
}

// GetAcronymDefinition looks up a domain acronym. The input is trimmed and
// uppercased before lookup. Returns nil on miss, never an error.
func GetAcronymDefinition(token string) *models.AcronymDefinition {
	def, ok := acronyms[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return nil
	}
	return &def
}

// IsPropertyAcronym reports whether the token is a known domain acronym.
func IsPropertyAcronym(token string) bool {
	return GetAcronymDefinition(token) != nil
}

// acronymTokenPattern matches 2-6 letter all-caps tokens, optionally with a
// trailing digit run (S20, EWS1, LPE1).
var acronymTokenPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)

// ExpandAcronymsInText replaces each recognised acronym in the text with
// "<fullName> (<description>)". Unrecognised all-caps tokens are left as-is.
func ExpandAcronymsInText(text string) string {
	return acronymTokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		def, ok := acronyms[token]
		if !ok {
			return token
		}
		return fmt.Sprintf("%s (%s)", def.FullName, def.Description)
	})
}

// IsOutOfScope reports whether a single token exactly matches the deny-list.
func IsOutOfScope(token string) bool {
	normalized := strings.ToLower(strings.TrimSpace(token))
	for _, term := range outOfScopeTerms {
		if normalized == term {
			return true
		}
	}
	return false
}

// ContainsOutOfScopeTopic reports whether the full input mentions any
// deny-listed topic as a substring. Used for whole-message screening.
func ContainsOutOfScopeTopic(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, term := range outOfScopeTerms {
		if strings.Contains(lowered, term) {
			return term, true
		}
	}
	return "", false
}

// ProcessedInput aggregates everything the Q&A adapter needs to know about
// a piece of user text before answering it.
type ProcessedInput struct {
	ExpandedText       string                     `json:"expanded_text"`
	Acronyms           []models.AcronymDefinition `json:"acronyms,omitempty"`
	OutOfScope         bool                       `json:"out_of_scope"`
	OutOfScopeTerm     string                     `json:"out_of_scope_term,omitempty"`
	NeedsClarification []string                   `json:"needs_clarification,omitempty"`
}

// ProcessUserInput runs acronym detection, expansion and the scope gate over
// the input. Any all-caps token that is neither a known acronym nor a
// deny-listed term lands in NeedsClarification.
func ProcessUserInput(text string) ProcessedInput {
	result := ProcessedInput{
		ExpandedText: ExpandAcronymsInText(text),
	}

	if term, found := ContainsOutOfScopeTopic(text); found {
		result.OutOfScope = true
		result.OutOfScopeTerm = term
	}

	seen := map[string]bool{}
	for _, token := range acronymTokenPattern.FindAllString(text, -1) {
		if seen[token] {
			continue
		}
		seen[token] = true

		if def, ok := acronyms[token]; ok {
			result.Acronyms = append(result.Acronyms, def)
			continue
		}
		if !IsOutOfScope(token) {
			result.NeedsClarification = append(result.NeedsClarification, token)
		}
	}

	return result
}
