package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/finpulse/internal/model"
)

// Pattern maps a description regex onto a category.
type Pattern struct {
	Name     string
	Regex    string
	Category model.Category
	Priority int // Higher priority patterns are checked first
}

type compiledPattern struct {
	regex *regexp.Regexp
	Pattern
}

// CategoryDetector infers categories for statements that do not carry one.
type CategoryDetector struct {
	patterns []compiledPattern
}

// DefaultPatterns returns the built-in description patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "Payroll", Regex: `\b(DIRECTDEP|DIRECT\s*DEP|DIR\s*DEP|PAYROLL|SALARY|WAGES|PAYCHECK)\b`, Category: model.CategorySalary, Priority: 100},
		{Name: "Tuition", Regex: `\b(TUITION|UNIVERSITY|COLLEGE|SCHOOL\s*FEES?|BURSAR)\b`, Category: model.CategoryEducation, Priority: 95},
		{Name: "Rent", Regex: `\b(RENT|LANDLORD|LEASE|PROPERTY\s*MGMT)\b`, Category: model.CategoryRent, Priority: 90},
		{Name: "Brokerage", Regex: `\b(BROKERAGE|VANGUARD|FIDELITY|SCHWAB|MUTUAL\s*FUND|SIP|INVEST(MENT)?)\b`, Category: model.CategoryInvestment, Priority: 85},
		{Name: "Card Payment", Regex: `\b(CARD\s*PAYMENT|AUTOPAY|PAYMENT\s*THANK\s*YOU)\b`, Category: model.CategoryPayment, Priority: 80},
		{Name: "Transfer", Regex: `\b(TRANSFER|XFER|ZELLE|VENMO|WIRE)\b`, Category: model.CategoryTransfer, Priority: 75},
		{Name: "Travel", Regex: `\b(AIRLINES?|AIRWAYS|HOTEL|MARRIOTT|HILTON|AIRBNB|EXPEDIA|UBER|LYFT|SHELL|CHEVRON|FUEL)\b`, Category: model.CategoryTravel, Priority: 70},
		{Name: "Dining", Regex: `\b(RESTAURANT|CAFE|COFFEE|STARBUCKS|PIZZA|GRILL|DOORDASH|GRUBHUB|GROCERY|WHOLE\s*FOODS|MARKET)\b`, Category: model.CategoryFood, Priority: 60},
		{Name: "Entertainment", Regex: `\b(NETFLIX|SPOTIFY|CINEMA|THEATER|THEATRE|STEAM)\b`, Category: model.CategoryEntertainment, Priority: 50},
		{Name: "Utilities", Regex: `\b(ELECTRIC|WATER|GAS\s*CO|VERIZON|AT&T|COMCAST|INTERNET|MOBILE)\b`, Category: model.CategoryUtilities, Priority: 45},
		{Name: "Shopping", Regex: `\b(AMAZON|TARGET|WALMART|BEST\s*BUY|MALL|STORE)\b`, Category: model.CategoryShopping, Priority: 40},
	}
}

// NewCategoryDetector compiles patterns, highest priority first.
func NewCategoryDetector(patterns []Pattern) (*CategoryDetector, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		if !p.Category.IsValid() {
			return nil, fmt.Errorf("pattern %s has unknown category %q", p.Name, p.Category)
		}

		expr := p.Regex
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		regex, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, regex: regex})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &CategoryDetector{patterns: compiled}, nil
}

// Detect returns the category of the first matching pattern, or other.
func (d *CategoryDetector) Detect(description string) model.Category {
	for _, p := range d.patterns {
		if p.regex.MatchString(description) {
			return p.Category
		}
	}
	return model.CategoryOther
}

// PatternCount returns the number of loaded patterns.
func (d *CategoryDetector) PatternCount() int {
	return len(d.patterns)
}
