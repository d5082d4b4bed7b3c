package models

// AcronymDomain groups glossary entries by the area of block management
// they belong to.
type AcronymDomain string

const (
	DomainCompliance AcronymDomain = "compliance"
	DomainLegal      AcronymDomain = "legal"
	DomainFinancial  AcronymDomain = "financial"
	DomainSafety     AcronymDomain = "safety"
	DomainGeneral    AcronymDomain = "general"
)

// AcronymDefinition is one entry in the static domain glossary.
// Loaded at process start and never mutated; keyed by the uppercase acronym.
type AcronymDefinition struct {
	Acronym     string        `json:"acronym"`
	FullName    string        `json:"full_name"`
	Description string        `json:"description"`
	Domain      AcronymDomain `json:"domain"`
	Context     string        `json:"context,omitempty"`
}
