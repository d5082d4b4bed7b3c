package reports

import (
	"fmt"
	"time"

	"github.com/blociq/blociq-engine/pkg/models"
)

const ukDateLayout = "02/01/2006"

// GenerateTitle builds a report title from the base name and scope.
// A building name, when known, replaces the generic scope suffix.
func GenerateTitle(base string, scope models.ReportScope, buildingName string) string {
	if buildingName != "" {
		return fmt.Sprintf("%s - %s", base, buildingName)
	}

	switch scope {
	case models.ScopeAgency:
		return base + " - Portfolio"
	case models.ScopeUnit:
		return base + " - Unit"
	default:
		return base
	}
}

// FormatPeriod renders the reporting window in UK date format. An open-ended
// period runs to the current date.
func FormatPeriod(period models.Period, now time.Time) string {
	since := period.Since.Format(ukDateLayout)
	if period.Until != nil {
		return fmt.Sprintf("%s - %s", since, period.Until.Format(ukDateLayout))
	}
	return fmt.Sprintf("%s - %s", since, now.Format(ukDateLayout))
}
