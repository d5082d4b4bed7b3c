package reports

import (
	"fmt"

	"github.com/corazawaf/libinjection-go"

	"github.com/blociq/blociq-engine/pkg/apperrors"
)

// QueryParam is one bound parameter for an ad hoc report query.
type QueryParam struct {
	Name  string
	Value any
}

// ScreenParam rejects string parameter values carrying SQL injection
// payloads. Parameters are always bound, never interpolated; screening is
// an additional layer for values that end up inside LIKE patterns or view
// filters.
func ScreenParam(p QueryParam) error {
	s, ok := p.Value.(string)
	if !ok {
		return nil
	}
	if injected, _ := libinjection.IsSQLi(s); injected {
		return fmt.Errorf("parameter %s: %w", p.Name, apperrors.ErrInjectionDetected)
	}
	return nil
}

// BuildQueryParams screens every parameter and returns the bound values in
// order. The agency id is always appended last so callers cannot omit the
// tenant filter.
func BuildQueryParams(agencyID any, params ...QueryParam) ([]any, error) {
	values := make([]any, 0, len(params)+1)
	for _, p := range params {
		if err := ScreenParam(p); err != nil {
			return nil, err
		}
		values = append(values, p.Value)
	}
	values = append(values, agencyID)
	return values, nil
}
