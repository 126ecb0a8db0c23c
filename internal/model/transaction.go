package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single entry of a customer's transaction history.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Category    Category
	Amount      decimal.Decimal // Magnitude, never negative
}

// GenerateHash creates a stable hash for duplicate detection during import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.Category)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IncomeUnit fixes how Profile.Income is expressed for a deployment.
type IncomeUnit string

// Income unit constants.
const (
	IncomeAnnual  IncomeUnit = "annual"
	IncomeMonthly IncomeUnit = "monthly"
)

var monthsPerYear = decimal.NewFromInt(12)

// Valid reports whether u is a known unit.
func (u IncomeUnit) Valid() bool {
	return u == IncomeAnnual || u == IncomeMonthly
}

// Monthly converts an amount expressed in u to a monthly amount.
func (u IncomeUnit) Monthly(v decimal.Decimal) decimal.Decimal {
	if u == IncomeAnnual {
		return v.Div(monthsPerYear)
	}
	return v
}

// Profile holds the customer attributes needed for scoring.
type Profile struct {
	CustomerID string
	Income     decimal.Decimal
	Age        int // 0 when not supplied
}
