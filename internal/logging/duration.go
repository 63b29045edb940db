package logging

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders the time until the next refresh, e.g. "1 hour, 2 minutes, 3 seconds".
//
// Zero units are skipped and sub-second remainders are dropped; a duration below one second
// renders as "0 seconds".
func FormatDuration(d time.Duration) string {
	units := []struct {
		value int64
		name  string
	}{
		{int64(d / time.Hour), "hour"},
		{int64(d % time.Hour / time.Minute), "minute"},
		{int64(d % time.Minute / time.Second), "second"},
	}

	parts := make([]string, 0, len(units))

	for _, unit := range units {
		switch {
		case unit.value == 1:
			parts = append(parts, "1 "+unit.name)
		case unit.value > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", unit.value, unit.name))
		}
	}

	if len(parts) == 0 {
		return "0 seconds"
	}

	return strings.Join(parts, ", ")
}
