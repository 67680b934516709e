package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// seiDecimals is the precision of the chain's base currency: 1 SEI = 1e18 wei.
const seiDecimals = 18

var weiPerSei = new(big.Int).Exp(big.NewInt(10), big.NewInt(seiDecimals), nil)

// ParseSei converts a decimal SEI string such as "0.5" or "1.25" into wei.
func ParseSei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		return nil, fmt.Errorf("amount must not be negative: %s", s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > seiDecimals {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", s, seiDecimals)
	}
	// Right-pad the fractional part to 18 digits so whole+frac is wei.
	frac += strings.Repeat("0", seiDecimals-len(frac))

	wei, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	return wei, nil
}

// FormatSei renders a wei value as a decimal SEI string with trailing zeros
// trimmed, the inverse of ParseSei.
func FormatSei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	quo, rem := new(big.Int).QuoRem(wei, weiPerSei, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%018s", rem.String()), "0")
	return quo.String() + "." + frac
}

// ParseWei parses a base-10 wei string into a non-negative integer.
func ParseWei(s string) (*big.Int, error) {
	wei, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount: %s", s)
	}
	if wei.Sign() < 0 {
		return nil, fmt.Errorf("wei amount must not be negative: %s", s)
	}
	return wei, nil
}

// RentalCost is the amount charged for a rental: pricePerDay * days. The
// price is snapshotted by the caller, so later price updates never change
// what an existing rental paid.
func RentalCost(pricePerDay *big.Int, days int32) *big.Int {
	return new(big.Int).Mul(pricePerDay, big.NewInt(int64(days)))
}

// SplitPayment divides a rental payment into the platform fee (feeBps basis
// points, rounded down) and the creator's remainder. The two parts always
// sum to the original amount.
func SplitPayment(amount *big.Int, feeBps int32) (fee, creatorShare *big.Int) {
	fee = new(big.Int).Mul(amount, big.NewInt(int64(feeBps)))
	fee.Quo(fee, big.NewInt(10000))
	creatorShare = new(big.Int).Sub(amount, fee)
	return fee, creatorShare
}
