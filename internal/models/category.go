package models

// Category is one of the fixed spending categories a transaction can be
// classified into. The set is closed: the categorizer, reward calculator
// and card profiles all agree on these names.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryFuel          Category = "fuel"
	CategoryGrocery       Category = "grocery"
	CategoryShopping      Category = "shopping"
	CategoryTravel        Category = "travel"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryMedical       Category = "medical"
	CategoryATM           Category = "atm"
	CategoryTransfer      Category = "transfer"
	CategoryInsurance     Category = "insurance"
	CategoryInvestment    Category = "investment"
	CategoryOthers        Category = "others"
)

// AllCategories lists every valid category, in display order.
var AllCategories = []Category{
	CategoryFood, CategoryFuel, CategoryGrocery, CategoryShopping,
	CategoryTravel, CategoryEntertainment, CategoryUtilities, CategoryMedical,
	CategoryATM, CategoryTransfer, CategoryInsurance, CategoryInvestment,
	CategoryOthers,
}

// IsValidCategory reports whether s names a known category.
func IsValidCategory(s string) bool {
	for _, c := range AllCategories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// CategorizationMethod identifies which resolution tier produced a result.
type CategorizationMethod string

const (
	MethodRule        CategorizationMethod = "rule"
	MethodMerchantDB  CategorizationMethod = "merchant-db"
	MethodUserPattern CategorizationMethod = "user-pattern"
	MethodClassifier  CategorizationMethod = "classifier"
	MethodFallback    CategorizationMethod = "fallback"
)

// CategoryResult is the outcome of categorizing a single transaction.
// It is kept separate from Transaction so re-categorization never mutates
// parse output.
type CategoryResult struct {
	Category   Category             `json:"category"`
	Confidence float64              `json:"confidence"`
	Method     CategorizationMethod `json:"method"`
	Details    string               `json:"details,omitempty"`
}
