package insight

import (
	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
)

// Validate rejects inputs the extractor must never see.
// Negative amounts are reported, never coerced to zero.
func Validate(transactions []model.Transaction, profile model.Profile) error {
	if profile.Income.IsNegative() {
		return common.InvalidInputf("profile income %s is negative", profile.Income)
	}
	if profile.Age < 0 {
		return common.InvalidInputf("profile age %d is negative", profile.Age)
	}

	for i, txn := range transactions {
		if txn.Amount.IsNegative() {
			return common.InvalidInputf("transaction at index %d has negative amount %s", i, txn.Amount)
		}
		if txn.Category != "" && !txn.Category.IsValid() {
			return common.InvalidInputf("transaction at index %d has unknown category %q", i, txn.Category)
		}
	}

	return nil
}
