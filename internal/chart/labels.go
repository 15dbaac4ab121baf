package chart

import (
	"fmt"
	"strings"

	"github.com/guttosm/b3view/internal/domain/models"
)

// FormatLabel turns "YYYY-MM-DD" into "DD/MM/YYYY".
//
// The date is split on '-' and reassembled; it is never parsed as a
// calendar date, so the digits come out exactly as the backend sent them
// regardless of locale or timezone.
func FormatLabel(date string) (string, error) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: date %q", ErrBadDate, date)
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0], nil
}

// Labels formats the date of every record, in order.
func Labels(records []models.Record) ([]string, error) {
	out := make([]string, len(records))
	for i, r := range records {
		l, err := FormatLabel(r.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = l
	}
	return out, nil
}
