package model

import "strings"

// Category is the normalized spending category of a transaction.
type Category string

// Category constants.
const (
	CategorySalary        Category = "salary"
	CategoryTravel        Category = "travel"
	CategoryInvestment    Category = "investment"
	CategoryEducation     Category = "education"
	CategoryRent          Category = "rent"
	CategoryFood          Category = "food"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryPayment       Category = "payment"
	CategoryTransfer      Category = "transfer"
	CategoryOther         Category = "other"
)

// bankCategoryLabels maps the labels found in bank statement exports onto our categories.
var bankCategoryLabels = map[string]Category{
	"restaurants":         CategoryFood,
	"fast food":           CategoryFood,
	"groceries":           CategoryFood,
	"paycheck":            CategorySalary,
	"payroll":             CategorySalary,
	"mortgage & rent":     CategoryRent,
	"gas & fuel":          CategoryTravel,
	"air travel":          CategoryTravel,
	"movies & dvds":       CategoryEntertainment,
	"music":               CategoryEntertainment,
	"mobile phone":        CategoryUtilities,
	"home improvement":    CategoryShopping,
	"credit card payment": CategoryPayment,
}

// AllCategories returns every known category in a stable order.
func AllCategories() []Category {
	return []Category{
		CategorySalary, CategoryTravel, CategoryInvestment, CategoryEducation,
		CategoryRent, CategoryFood, CategoryShopping, CategoryEntertainment,
		CategoryUtilities, CategoryPayment, CategoryTransfer, CategoryOther,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a raw category label onto a Category.
// Matching is case-insensitive and unknown labels become CategoryOther.
func ParseCategory(raw string) Category {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return CategoryOther
	}

	if c := Category(label); c.IsValid() {
		return c
	}

	if c, ok := bankCategoryLabels[label]; ok {
		return c
	}

	return CategoryOther
}
