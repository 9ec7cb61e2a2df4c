// Package determinism provides primitives for guaranteeing deterministic execution.
// Quote computation must produce bit-identical output for identical input, so
// hashing, IDs, ordering and money rounding all go through here.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places of the smallest currency unit
const CentPlaces int32 = 2

// QuoteNamespace seeds name-based quote IDs
var QuoteNamespace = uuid.MustParse("6f0c8a52-4b8e-5c1d-9a37-2e51d0b7c4f3")

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// IsZero reports whether the hash was never computed
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// StableID derives a name-based (v5) UUID from the given parts.
// The same parts always produce the same ID.
func StableID(parts ...[]byte) uuid.UUID {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}
	return uuid.NewSHA1(QuoteNamespace, buf)
}

// RoundDisplay rounds an exact amount to cents with banker's rounding.
// Only call this on figures that are about to be shown, never on
// intermediate values that will be summed.
func RoundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CentPlaces)
}

// FormatMoney renders an amount as a display string, e.g. "$1,234.56" or "-$5.00"
func FormatMoney(d decimal.Decimal) string {
	r := RoundDisplay(d)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	fixed := r.StringFixed(CentPlaces)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var grouped []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}
	return sign + "$" + string(grouped) + frac
}

// Sum adds amounts in order. Decimal addition is exact, so the result does
// not depend on order, but a fixed order keeps exponent normalization stable.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// SortSlice sorts a slice in a stable, deterministic manner
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}

// SortedKeys returns the keys of a string-keyed map in ascending order
func SortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
