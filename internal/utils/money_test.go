package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAddRound2, toplama sonucunun float kayması olmadan 2 basamakta kaldığını test eder.
func TestAddRound2(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"basit toplama", 10.00, 2.50, 12.50},
		{"float kayması", 0.1, 0.2, 0.30},
		{"kuruş hassasiyeti", 1.005, 0.00, 1.01},
		{"sıfır", 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AddRound2(tc.a, tc.b))
		})
	}
}

// TestSubClampZero, reversal debit'inin negatife düşmediğini test eder.
func TestSubClampZero(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"normal debit", 12.50, 2.50, 10.00},
		{"tam sıfırlama", 5.00, 5.00, 0.00},
		{"clamp", 1.75, 5.00, 0.00},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SubClampZero(tc.a, tc.b))
		})
	}
}

// TestParseAmount, partner'dan gelen string tutarların doğrulamasını test eder.
func TestParseAmount(t *testing.T) {
	// Geçerli tutar
	amount, err := ParseAmount("3.25")
	assert.NoError(t, err)
	assert.Equal(t, 3.25, amount)

	// Yuvarlama
	amount, err = ParseAmount("3.256")
	assert.NoError(t, err)
	assert.Equal(t, 3.26, amount)

	// Geçersiz format
	_, err = ParseAmount("abc")
	assert.Error(t, err)

	// Negatif tutar
	_, err = ParseAmount("-1.00")
	assert.Error(t, err)

	// Boş string
	_, err = ParseAmount("")
	assert.Error(t, err)
}
