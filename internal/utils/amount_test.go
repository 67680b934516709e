package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSei(t *testing.T) {
	t.Run("Whole amount", func(t *testing.T) {
		wei, err := ParseSei("1")
		assert.NoError(t, err)
		assert.Equal(t, "1000000000000000000", wei.String())
	})

	t.Run("Fractional amount", func(t *testing.T) {
		wei, err := ParseSei("0.5")
		assert.NoError(t, err)
		assert.Equal(t, "500000000000000000", wei.String())
	})

	t.Run("Small fraction", func(t *testing.T) {
		wei, err := ParseSei("0.1")
		assert.NoError(t, err)
		assert.Equal(t, "100000000000000000", wei.String())
	})

	t.Run("Leading dot", func(t *testing.T) {
		wei, err := ParseSei(".25")
		assert.NoError(t, err)
		assert.Equal(t, "250000000000000000", wei.String())
	})

	t.Run("Negative rejected", func(t *testing.T) {
		_, err := ParseSei("-1")
		assert.Error(t, err)
	})

	t.Run("Too many decimals rejected", func(t *testing.T) {
		_, err := ParseSei("0.0000000000000000001")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decimal places")
	})

	t.Run("Garbage rejected", func(t *testing.T) {
		_, err := ParseSei("abc")
		assert.Error(t, err)
	})
}

func TestFormatSei(t *testing.T) {
	tests := []struct {
		wei      string
		expected string
	}{
		{"0", "0"},
		{"1000000000000000000", "1"},
		{"500000000000000000", "0.5"},
		{"300000000000000000", "0.3"},
		{"1250000000000000000", "1.25"},
		{"1", "0.000000000000000001"},
	}

	for _, tt := range tests {
		wei, ok := new(big.Int).SetString(tt.wei, 10)
		assert.True(t, ok)
		assert.Equal(t, tt.expected, FormatSei(wei), "wei=%s", tt.wei)
	}
}

func TestFormatSeiRoundTrip(t *testing.T) {
	for _, s := range []string{"0.5", "1", "12.345", "0.000001"} {
		wei, err := ParseSei(s)
		assert.NoError(t, err)
		assert.Equal(t, s, FormatSei(wei))
	}
}

func TestRentalCost(t *testing.T) {
	pricePerDay, err := ParseSei("0.1")
	assert.NoError(t, err)

	cost := RentalCost(pricePerDay, 3)
	assert.Equal(t, "0.3", FormatSei(cost))
}

func TestSplitPayment(t *testing.T) {
	amount, err := ParseSei("1")
	assert.NoError(t, err)

	t.Run("Five percent fee", func(t *testing.T) {
		fee, share := SplitPayment(amount, 500)
		assert.Equal(t, "0.05", FormatSei(fee))
		assert.Equal(t, "0.95", FormatSei(share))
		assert.Equal(t, amount, new(big.Int).Add(fee, share))
	})

	t.Run("Zero fee", func(t *testing.T) {
		fee, share := SplitPayment(amount, 0)
		assert.Equal(t, int64(0), fee.Int64())
		assert.Equal(t, amount, share)
	})

	t.Run("Rounding never loses wei", func(t *testing.T) {
		odd := big.NewInt(1001)
		fee, share := SplitPayment(odd, 333)
		assert.Equal(t, odd, new(big.Int).Add(fee, share))
	})
}
