package core

import (
	"fmt"
	"strings"
)

// Normalizer canonicalizes raw phone numbers into international form.
// Normalization is pure and idempotent: a canonical identifier
// normalizes to itself.
type Normalizer struct {
	// DefaultCountryCode including the leading "+", e.g. "+250".
	DefaultCountryCode string
	// TrunkPrefix is the national dialing prefix rewritten to the
	// country code, usually "0".
	TrunkPrefix string
	MinDigits   int
	MaxDigits   int
}

// NewNormalizer returns a normalizer with the given country settings.
func NewNormalizer(countryCode, trunkPrefix string, minDigits, maxDigits int) Normalizer {
	return Normalizer{
		DefaultCountryCode: countryCode,
		TrunkPrefix:        trunkPrefix,
		MinDigits:          minDigits,
		MaxDigits:          maxDigits,
	}
}

// Normalize canonicalizes a raw phone number. The rules, in order:
// a leading "+" is kept as-is; the trunk prefix is rewritten to the
// country code; a bare country calling code gets "+" prepended; any
// other number gets the default country code prepended. Note the last
// rule mis-homes international numbers dialed without "+"; it matches
// how numbers are entered locally and is kept deliberately.
func (n Normalizer) Normalize(raw string) (string, error) {
	cleaned := stripNonDial(raw)
	if cleaned == "" || cleaned == "+" {
		return "", fmt.Errorf("%w: %q contains no digits", ErrInvalidIdentifier, raw)
	}

	ccDigits := strings.TrimPrefix(n.DefaultCountryCode, "+")

	switch {
	case strings.HasPrefix(cleaned, "+"):
		// Already international.
	case n.TrunkPrefix != "" && strings.HasPrefix(cleaned, n.TrunkPrefix):
		cleaned = n.DefaultCountryCode + cleaned[len(n.TrunkPrefix):]
	case ccDigits != "" && strings.HasPrefix(cleaned, ccDigits):
		cleaned = "+" + cleaned
	default:
		cleaned = n.DefaultCountryCode + cleaned
	}

	digits := len(cleaned) - 1 // minus the "+"
	if digits < n.MinDigits || digits > n.MaxDigits {
		return "", fmt.Errorf("%w: %q has %d digits, want %d-%d",
			ErrInvalidIdentifier, raw, digits, n.MinDigits, n.MaxDigits)
	}

	return cleaned, nil
}

// stripNonDial drops everything except digits and a leading "+".
func stripNonDial(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
