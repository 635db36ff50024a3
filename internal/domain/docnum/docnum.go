// Package docnum formats the human-facing sequential document numbers
// stamped on certain source records: PREFIX-DDMMYY-SERIAL, where the serial
// is unique per (mill, kind, local calendar day).
package docnum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "020106" // DDMMYY

// Format builds a document number. Serials are zero-padded to two digits and
// widen naturally past 99; uniqueness never depends on the padding.
func Format(prefix string, date time.Time, serial int) string {
	return fmt.Sprintf("%s-%s-%02d", prefix, date.Format(dateLayout), serial)
}

// Parse splits a document number into its parts. Used by reconciliation
// tooling and tests; the application itself treats numbers as opaque.
func Parse(s string) (prefix string, date time.Time, serial int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", time.Time{}, 0, fmt.Errorf("docnum: malformed %q", s)
	}
	date, err = time.Parse(dateLayout, parts[1])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("docnum: bad date in %q: %w", s, err)
	}
	serial, err = strconv.Atoi(parts[2])
	if err != nil || serial < 1 {
		return "", time.Time{}, 0, fmt.Errorf("docnum: bad serial in %q", s)
	}
	return parts[0], date, serial, nil
}
