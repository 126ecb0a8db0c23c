package statements

import (
	"fmt"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// start is the posting date of the first built transaction.
var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

var descriptions = map[model.Category]string{
	model.CategorySalary:     "ACME CORP PAYROLL",
	model.CategoryTravel:     "DELTA AIRLINES",
	model.CategoryInvestment: "VANGUARD BROKERAGE",
	model.CategoryEducation:  "STATE UNIVERSITY TUITION",
	model.CategoryRent:       "OAK ST RENT",
	model.CategoryFood:       "OLIVE GARDEN RESTAURANT",
	model.CategoryShopping:   "AMAZON MKTP",
}

// Builder accumulates transactions in posting order.
type Builder struct {
	txns []model.Transaction
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

// With appends count transactions of amount in category c.
func (b *Builder) With(c model.Category, amount int64, count int) *Builder {
	for range count {
		n := len(b.txns)
		desc, ok := descriptions[c]
		if !ok {
			desc = string(c)
		}
		b.txns = append(b.txns, model.Transaction{
			ID:          fmt.Sprintf("t-%03d", n+1),
			Date:        start.AddDate(0, 0, n),
			Description: desc,
			Amount:      decimal.NewFromInt(amount),
			Category:    c,
		})
	}
	return b
}

// WithSalary appends count salary credits of amount.
func (b *Builder) WithSalary(amount int64, count int) *Builder {
	return b.With(model.CategorySalary, amount, count)
}

// WithFixture appends every transaction of f.
func (b *Builder) WithFixture(f Fixture) *Builder {
	for _, p := range f.parts {
		b.With(p.category, p.amount, p.count)
	}
	return b
}

// Build returns a copy of the accumulated transactions.
func (b *Builder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}
