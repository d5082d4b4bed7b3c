package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantScope wraps a connection with agency context and ensures cleanup.
// The connection has app.current_agency_id set for RLS policy evaluation.
// Repositories additionally bind agency_id as a query parameter, so the
// agency filter holds even against tables without RLS policies.
type TenantScope struct {
	Conn     *pgxpool.Conn
	AgencyID uuid.UUID
}

// Close resets the agency context and releases the connection to the pool.
// This MUST be called to prevent agency context leaking to the next request.
func (s *TenantScope) Close() {
	if s.Conn == nil {
		return
	}
	_, _ = s.Conn.Exec(context.Background(), "RESET app.current_agency_id")
	s.Conn.Release()
}

// WithTenant acquires a connection and sets the agency context for RLS.
// The returned TenantScope MUST be closed with defer scope.Close().
func (db *DB) WithTenant(ctx context.Context, agencyID uuid.UUID) (*TenantScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.current_agency_id', $1, false)", agencyID.String())
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &TenantScope{Conn: conn, AgencyID: agencyID}, nil
}
