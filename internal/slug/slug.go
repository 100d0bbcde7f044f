// Package slug derives URL-safe product identifiers from display names.
package slug

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxLength = 80
	fallback  = "product"
	alphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Make lowercases name, folds diacritics to ASCII and collapses every run of
// other characters into a single hyphen.
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	s := b.String()
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	if s == "" {
		return fallback
	}
	return s
}

// WithTimestamp disambiguates base with the wall-clock time in milliseconds.
func WithTimestamp(base string, at time.Time) string {
	return fmt.Sprintf("%s-%d", base, at.UnixMilli())
}

// Suffixer appends a timestamp and a short random token to a base slug. It is
// used when a timestamped slug still collides.
type Suffixer struct {
	token func() string
}

// NewSuffixer builds a Suffixer with a 6 character lowercase token.
func NewSuffixer() (*Suffixer, error) {
	gen, err := nanoid.CustomASCII(alphabet, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to create slug token generator: %w", err)
	}
	return &Suffixer{token: gen}, nil
}

// Unique returns base-<millis>-<token>.
func (s *Suffixer) Unique(base string, at time.Time) string {
	return WithTimestamp(base, at) + "-" + s.token()
}
