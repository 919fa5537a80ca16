// Package entity defines the core business entities for the domain layer.
package entity

// Category labels an expense. The set is closed; the first entry is the form default.
type Category string

const (
	CategoryFoodAndDining     Category = "Food & Dining"
	CategoryTransportation    Category = "Transportation"
	CategoryShopping          Category = "Shopping"
	CategoryBillsAndUtilities Category = "Bills & Utilities"
	CategoryEntertainment     Category = "Entertainment"
	CategoryHealthcare        Category = "Healthcare"
	CategoryTravel            Category = "Travel"
	CategoryEducation         Category = "Education"
	CategoryOthers            Category = "Others"
)

var categories = []Category{
	CategoryFoodAndDining,
	CategoryTransportation,
	CategoryShopping,
	CategoryBillsAndUtilities,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryTravel,
	CategoryEducation,
	CategoryOthers,
}

// DefaultCategory is the category preselected on a cleared expense form.
const DefaultCategory = CategoryFoodAndDining

// Categories returns the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory returns the Category for label, or false when label is not part of the set.
func ParseCategory(label string) (Category, bool) {
	c := Category(label)
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
