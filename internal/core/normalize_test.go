package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() Normalizer {
	return NewNormalizer("+250", "0", 10, 15)
}

func TestNormalize(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"trunk prefix rewritten", "0788123456", "+250788123456"},
		{"already international", "+250788123456", "+250788123456"},
		{"bare country code", "250788123456", "+250788123456"},
		{"no recognizable prefix", "788123456", "+250788123456"},
		{"formatting stripped", "(078) 812-3456", "+250788123456"},
		{"spaces and dots", "+250 788.123.456", "+250788123456"},
		{"foreign international kept", "+14155550100", "+14155550100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeInvalid(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no digits", "call me"},
		{"bare plus", "+"},
		{"too short", "07881"},
		{"too long", "+2507881234567890123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidIdentifier), "want ErrInvalidIdentifier, got %v", err)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := testNormalizer()

	raws := []string{"0788123456", "250788123456", "788123456", "+250788123456", "+14155550100"}
	for _, raw := range raws {
		first, err := n.Normalize(raw)
		require.NoError(t, err)

		second, err := n.Normalize(first)
		require.NoError(t, err)
		assert.Equal(t, first, second, "normalizing %q twice diverged", raw)
	}
}
