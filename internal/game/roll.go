package game

import (
	"crypto/rand"
	"errors"
	"math"
	"math/big"

	"skincase_backend/internal/domain"
)

const oddsPrecision = 1000000 // 0.000001 resolution

var ErrBadOddsTable = errors.New("case odds must sum to 1")

// ValidateOdds checks that a drop table's probabilities sum to 1
// (within rounding tolerance) and that every entry is positive.
func ValidateOdds(items []domain.CaseItem) error {
	if len(items) == 0 {
		return ErrBadOddsTable
	}
	sum := 0.0
	for _, it := range items {
		if it.Odds <= 0 {
			return ErrBadOddsTable
		}
		sum += it.Odds
	}
	if math.Abs(sum-1.0) > 0.0001 {
		return ErrBadOddsTable
	}
	return nil
}

// Roll picks one drop from the table using a cryptographically secure
// random draw over the cumulative probability distribution.
func Roll(items []domain.CaseItem) domain.CaseItem {
	n, err := rand.Int(rand.Reader, big.NewInt(oddsPrecision))
	if err != nil {
		n = big.NewInt(oddsPrecision / 2)
	}
	random := float64(n.Int64()) / oddsPrecision // 0.0 - 0.999999

	cumulative := 0.0
	for i := range items {
		cumulative += items[i].Odds
		if random < cumulative {
			return items[i]
		}
	}

	// rounding slack: fall through to the last entry
	return items[len(items)-1]
}

// ExpectedReturn is the mean payout value of the table, used by the
// admin UI to sanity-check case pricing.
func ExpectedReturn(items []domain.CaseItem) float64 {
	expected := 0.0
	for _, it := range items {
		expected += it.Odds * float64(it.Value)
	}
	return expected
}
