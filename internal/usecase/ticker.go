package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"PerfScope/internal/domain/models"
)

// MaxTickerLength bounds a single symbol, e.g. "BRK-B" or "^GSPC".
const MaxTickerLength = 20

var tickerRe = regexp.MustCompile(`^[A-Z0-9^=.\-]+$`)

// ParseTickers splits raw on commas and whitespace, upper-cases every entry
// and drops empties and duplicates while keeping first-seen order.
func ParseTickers(raw ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range raw {
		fields := strings.FieldsFunc(r, func(c rune) bool {
			return c == ',' || unicode.IsSpace(c)
		})
		for _, f := range fields {
			t := strings.ToUpper(strings.TrimSpace(f))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// ValidateTicker checks an already normalized symbol.
func ValidateTicker(t string) error {
	if len(t) == 0 || len(t) > MaxTickerLength || !tickerRe.MatchString(t) {
		return fmt.Errorf("%w: %q", models.ErrInvalidTickerFormat, t)
	}
	return nil
}
