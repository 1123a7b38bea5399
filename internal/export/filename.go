package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkordes/mileage-log/internal/domain"
)

const fallbackName = "Traveler"

var nonWordChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// BuildFilename derives the download name "{First}_{Last}_{MM}_{YYYY} Mileage.xlsx".
//
// The first and last whitespace-separated words of displayName are each
// stripped of anything but letters, digits and underscores, and the parts
// left non-empty are joined with "_". "Traveler" is used when none remain.
// An unparsable month falls back to the raw token with its first "-" replaced by "_".
func BuildFilename(displayName, month string) string {
	monthPart := strings.Replace(month, "-", "_", 1)
	if m, err := domain.ParseMonth(month); err == nil {
		monthPart = fmt.Sprintf("%02d_%04d", int(m.Month), m.Year)
	}

	var kept []string
	if parts := strings.Fields(displayName); len(parts) > 0 {
		ends := []string{parts[0]}
		if len(parts) > 1 {
			ends = append(ends, parts[len(parts)-1])
		}
		for _, p := range ends {
			if p = nonWordChars.ReplaceAllString(p, ""); p != "" {
				kept = append(kept, p)
			}
		}
	}
	name := strings.Join(kept, "_")
	if name == "" {
		name = fallbackName
	}

	return name + "_" + monthPart + " Mileage.xlsx"
}
