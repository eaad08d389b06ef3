package killer

import (
	"math/bits"
	"strings"
)

// DigitSet is a bitmask of digits 1-9. Bit positions 1-9 correspond to
// digits 1-9; bit 0 is unused.
type DigitSet uint16

// SumSet is a bitmask of reachable cage sums. Bit s set means the sum s
// is achievable. Cage sums never exceed 45, so a uint64 is plenty.
type SumSet uint64

// AllDigits returns a DigitSet with all digits 1-9 set.
func AllDigits() DigitSet {
	return DigitSet(0b1111111110)
}

// NewDigitSet creates a DigitSet from a slice of digits.
func NewDigitSet(digits []int) DigitSet {
	var d DigitSet
	for _, v := range digits {
		d = d.Set(v)
	}
	return d
}

// Has returns true if the digit is in the set.
func (d DigitSet) Has(digit int) bool {
	if digit < 1 || digit > 9 {
		return false
	}
	return d&(1<<digit) != 0
}

// Set adds a digit and returns the new set.
func (d DigitSet) Set(digit int) DigitSet {
	if digit < 1 || digit > 9 {
		return d
	}
	return d | (1 << digit)
}

// Clear removes a digit and returns the new set.
func (d DigitSet) Clear(digit int) DigitSet {
	if digit < 1 || digit > 9 {
		return d
	}
	return d &^ (1 << digit)
}

// Count returns the number of digits in the set.
func (d DigitSet) Count() int {
	return bits.OnesCount16(uint16(d))
}

// Single returns the sole digit when the set holds exactly one,
// otherwise (0, false).
func (d DigitSet) Single() (int, bool) {
	if d.Count() != 1 {
		return 0, false
	}
	return bits.TrailingZeros16(uint16(d)), true
}

// Digits returns the digits in ascending order.
func (d DigitSet) Digits() []int {
	out := make([]int, 0, d.Count())
	for v := d; v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros16(uint16(v)))
	}
	return out
}

// Sum returns the arithmetic sum of the digits in the set.
func (d DigitSet) Sum() int {
	total := 0
	for v := d; v != 0; v &= v - 1 {
		total += bits.TrailingZeros16(uint16(v))
	}
	return total
}

// IsEmpty returns true if no digit is set.
func (d DigitSet) IsEmpty() bool {
	return d == 0
}

// Intersect returns digits present in both sets.
func (d DigitSet) Intersect(other DigitSet) DigitSet {
	return d & other
}

// Union returns digits present in either set.
func (d DigitSet) Union(other DigitSet) DigitSet {
	return d | other
}

// Subtract returns digits in d but not in other.
func (d DigitSet) Subtract(other DigitSet) DigitSet {
	return d &^ other
}

// String returns a compact form like {2,5,9} for debugging.
func (d DigitSet) String() string {
	if d == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for _, v := range d.Digits() {
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteByte('0' + byte(v))
		first = false
	}
	sb.WriteByte('}')
	return sb.String()
}

// Has returns true if the sum s is reachable.
func (s SumSet) Has(sum int) bool {
	if sum < 0 || sum > 63 {
		return false
	}
	return s&(1<<sum) != 0
}

// Sums returns the reachable sums in ascending order.
func (s SumSet) Sums() []int {
	out := make([]int, 0, bits.OnesCount64(uint64(s)))
	for v := s; v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(uint64(v)))
	}
	return out
}
