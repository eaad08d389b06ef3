package killer

import "sync"

// The combinations table answers: which k-subsets of {1..9} sum to S?
// It is tiny (fewer than 600 non-empty entries), so the whole table is
// built once on first use and read-only afterwards.

const (
	maxCageSize = 9
	maxCageSum  = 45
)

var (
	combOnce   sync.Once
	combTable  [maxCageSize + 1][maxCageSum + 1][]DigitSet
	combUnions [maxCageSize + 1][maxCageSum + 1]DigitSet
)

func buildCombinations() {
	for k := 1; k <= maxCageSize; k++ {
		for sum := 1; sum <= maxCageSum; sum++ {
			var out []DigitSet
			enumerateCombinations(k, sum, 1, 0, &out)
			combTable[k][sum] = out
			var union DigitSet
			for _, c := range out {
				union |= c
			}
			combUnions[k][sum] = union
		}
	}
}

// enumerateCombinations walks digits in ascending order, pruning
// prefixes that cannot reach the target: with k digits left and the
// smallest candidate d, the tail is bounded below by d+1..d+k-1 and
// above by the k-1 largest digits.
func enumerateCombinations(k, sum, cur int, acc DigitSet, out *[]DigitSet) {
	if k == 1 {
		if sum >= cur && sum <= 9 {
			*out = append(*out, acc.Set(sum))
		}
		return
	}
	maxTail := (9 + 9 - k + 2) * (k - 1) / 2
	for d := cur; d <= 9-k+1; d++ {
		minTail := (k-1)*d + k*(k-1)/2
		if d+minTail > sum {
			break
		}
		if d+maxTail < sum {
			continue
		}
		enumerateCombinations(k-1, sum-d, d+1, acc.Set(d), out)
	}
}

// Combinations returns every k-subset of {1..9} summing to sum, as digit
// masks in ascending lexicographic order. An infeasible (k, sum) yields
// an empty list; the caller treats that as a contradiction.
func Combinations(k, sum int) []DigitSet {
	combOnce.Do(buildCombinations)
	if k < 1 || k > maxCageSize || sum < 1 || sum > maxCageSum {
		return nil
	}
	return combTable[k][sum]
}

// CombinationsUnion returns the bitwise OR of Combinations(k, sum).
func CombinationsUnion(k, sum int) DigitSet {
	combOnce.Do(buildCombinations)
	if k < 1 || k > maxCageSize || sum < 1 || sum > maxCageSum {
		return 0
	}
	return combUnions[k][sum]
}
