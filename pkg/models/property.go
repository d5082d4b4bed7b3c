package models

import (
	"time"

	"github.com/google/uuid"
)

// Building is an agency-managed block.
type Building struct {
	ID          uuid.UUID `json:"id"`
	AgencyID    uuid.UUID `json:"agency_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	ManagerName string    `json:"manager_name,omitempty"`
	IsHRB       bool      `json:"is_hrb"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnitLeaseholder joins a unit with its current leaseholder for add-in
// fact lookups.
type UnitLeaseholder struct {
	UnitID          uuid.UUID `json:"unit_id"`
	BuildingID      uuid.UUID `json:"building_id"`
	UnitNumber      string    `json:"unit_number"`
	LeaseholderName string    `json:"leaseholder_name,omitempty"`
}

// ComplianceStatusRow is one row of the building compliance status view.
type ComplianceStatusRow struct {
	BuildingID      uuid.UUID  `json:"building_id"`
	AssetKey        string     `json:"asset_key"`
	AssetType       string     `json:"asset_type"`
	Status          string     `json:"status"`
	LastInspectedAt *time.Time `json:"last_inspected_at,omitempty"`
	NextDueDate     *time.Time `json:"next_due_date,omitempty"`
	DaysOverdue     int        `json:"days_overdue"`
	DaysUntilDue    int        `json:"days_until_due"`
	Severity        string     `json:"severity,omitempty"`
	Priority        string     `json:"priority,omitempty"`
}

// DocumentRow is one row of the building documents table or latest-docs view.
type DocumentRow struct {
	ID         uuid.UUID  `json:"id"`
	BuildingID uuid.UUID  `json:"building_id"`
	DocType    string     `json:"doc_type"`
	Filename   string     `json:"filename"`
	DocDate    *time.Time `json:"doc_date,omitempty"`
	HasSummary bool       `json:"has_summary"`
}

// LeaseParty is a named party in a lease summary, with the page the fact
// was extracted from.
type LeaseParty struct {
	Name       string `json:"name"`
	SourcePage int    `json:"source_page,omitempty"`
}

// LeaseTerm is the lease duration extracted by Lease Lab.
type LeaseTerm struct {
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	SourcePage int    `json:"source_page,omitempty"`
}

// RepairEntry is one row of the lease repair responsibility matrix.
type RepairEntry struct {
	Item             string `json:"item"`
	ResponsibleParty string `json:"responsible_party"`
	SourcePage       int    `json:"source_page,omitempty"`
}

// ServiceCharge is the lease service-charge extraction.
type ServiceCharge struct {
	AnnualAmount     float64 `json:"annual_amount"`
	PaymentFrequency string  `json:"payment_frequency,omitempty"`
	SourcePage       int     `json:"source_page,omitempty"`
}

// Section20 is the lease Section 20 consultation extraction.
type Section20 struct {
	ThresholdAmount      float64 `json:"threshold_amount"`
	ConsultationRequired bool    `json:"consultation_required"`
	SourcePage           int     `json:"source_page,omitempty"`
}

// LeaseSummary is a pre-computed Lease Lab extraction of a lease document,
// consumed as a fact source by the Q&A and reply adapters.
type LeaseSummary struct {
	ID            uuid.UUID      `json:"id"`
	BuildingID    uuid.UUID      `json:"building_id"`
	DocType       string         `json:"doc_type"`
	Status        string         `json:"status"`
	Leaseholder   *LeaseParty    `json:"leaseholder,omitempty"`
	Landlord      *LeaseParty    `json:"landlord,omitempty"`
	Term          *LeaseTerm     `json:"term,omitempty"`
	RepairMatrix  []RepairEntry  `json:"repair_matrix,omitempty"`
	ServiceCharge *ServiceCharge `json:"service_charge,omitempty"`
	Section20     *Section20     `json:"section20,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
