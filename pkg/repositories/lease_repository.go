package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blociq/blociq-engine/pkg/apperrors"
	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/models"
)

// LeaseRepository provides access to pre-computed lease extractions.
type LeaseRepository interface {
	LatestSummary(ctx context.Context, agencyID, buildingID uuid.UUID) (*models.LeaseSummary, error)
}

type leaseRepository struct{}

// NewLeaseRepository creates a new LeaseRepository.
func NewLeaseRepository() LeaseRepository {
	return &leaseRepository{}
}

var _ LeaseRepository = (*leaseRepository)(nil)

// summaryPayload mirrors the extraction JSON stored alongside each lease
// summary row.
type summaryPayload struct {
	Leaseholder   *models.LeaseParty    `json:"leaseholder,omitempty"`
	Landlord      *models.LeaseParty    `json:"landlord,omitempty"`
	Term          *models.LeaseTerm     `json:"term,omitempty"`
	RepairMatrix  []models.RepairEntry  `json:"repair_matrix,omitempty"`
	ServiceCharge *models.ServiceCharge `json:"service_charge,omitempty"`
	Section20     *models.Section20     `json:"section20,omitempty"`
}

// LatestSummary returns the most recent ready lease extraction for the
// building, or ErrNotFound when none exists.
func (r *leaseRepository) LatestSummary(ctx context.Context, agencyID, buildingID uuid.UUID) (*models.LeaseSummary, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT s.id, s.building_id, s.doc_type, s.status, s.summary_json, s.created_at
		FROM lease_summaries s
		JOIN buildings b ON b.id = s.building_id
		WHERE b.agency_id = $1
		  AND s.building_id = $2
		  AND s.doc_type = 'lease'
		  AND s.status = 'READY'
		ORDER BY s.created_at DESC
		LIMIT 1`

	var summary models.LeaseSummary
	var payload []byte
	err := scope.Conn.QueryRow(ctx, query, agencyID, buildingID).Scan(
		&summary.ID, &summary.BuildingID, &summary.DocType, &summary.Status,
		&payload, &summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lease summary: %w", err)
	}

	if len(payload) > 0 {
		var extracted summaryPayload
		if err := json.Unmarshal(payload, &extracted); err != nil {
			return nil, fmt.Errorf("failed to decode lease summary payload: %w", err)
		}
		summary.Leaseholder = extracted.Leaseholder
		summary.Landlord = extracted.Landlord
		summary.Term = extracted.Term
		summary.RepairMatrix = extracted.RepairMatrix
		summary.ServiceCharge = extracted.ServiceCharge
		summary.Section20 = extracted.Section20
	}

	return &summary, nil
}
