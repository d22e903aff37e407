package utils

import (
	"fmt"
	"strings"
	"time"
)

// apiTimeLayout is ISO-8601 with a four-digit UTC offset and no colon, the
// format the Estfeed endpoints expect ("2025-01-01T00:00:00+0000").
const apiTimeLayout = "2006-01-02T15:04:05-0700"

// FormatAPITime formats a timestamp for the Estfeed query parameters. The
// value is always rendered in UTC.
func FormatAPITime(t time.Time) string {
	return t.UTC().Format(apiTimeLayout)
}

// ParseAPITime parses a timestamp in the Estfeed query-parameter format.
func ParseAPITime(s string) (time.Time, error) {
	t, err := time.Parse(apiTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse API timestamp %q: %w", s, err)
	}
	return t, nil
}

// ValidateEIC validates an Energy Identification Code
func ValidateEIC(eic string) error {
	if eic == "" {
		return fmt.Errorf("EIC cannot be empty")
	}

	// Check for characters that would break storage paths
	if strings.ContainsAny(eic, "/\\:*?\"<>|") {
		return fmt.Errorf("EIC contains invalid characters: %s", eic)
	}

	return nil
}

// SnapshotPath returns the storage path of one EIC's history snapshot:
// history/{eic}.json with the EIC lowercased.
func SnapshotPath(eic string) string {
	return FormatPath("history", strings.ToLower(eic)+".json")
}

// FormatPath formats storage path to ensure path consistency
func FormatPath(parts ...string) string {
	var cleanParts []string
	for _, part := range parts {
		if part != "" {
			// Remove leading and trailing slashes
			part = strings.Trim(part, "/")
			if part != "" {
				cleanParts = append(cleanParts, part)
			}
		}
	}
	return strings.Join(cleanParts, "/")
}
