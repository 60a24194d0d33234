package engineer

// id.go provides canonical engineer ID normalization.
//
// IDs arrive from CSV files and form inputs in mixed shapes: full-width
// digits typed in a Japanese IME, short forms like "1", or the canonical
// five-digit form. All comparisons (duplicate detection, lookups) operate
// on the canonical form produced here.

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// IDLength is the canonical zero-padded ID width.
const IDLength = 5

// ForbiddenID is reserved and never assigned to an engineer.
const ForbiddenID = "00000"

// NormalizeID converts raw input into the canonical fixed-width ID.
// Full-width digits are narrowed to half-width before validation, so
// "０１２３４" and "01234" normalize to the same canonical ID.
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(width.Narrow.String(raw))
	if s == "" {
		return "", fmt.Errorf("id is empty")
	}
	if len(s) > IDLength {
		return "", fmt.Errorf("id %q exceeds %d digits", s, IDLength)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("id %q contains non-digit character", s)
		}
	}
	canonical := strings.Repeat("0", IDLength-len(s)) + s
	if canonical == ForbiddenID {
		return "", fmt.Errorf("id %s is reserved", ForbiddenID)
	}
	return canonical, nil
}
