package cart

import "strings"

// DecideUpsell recommends the complementary category for a set of line items.
// A cart holding duck calls but no goose calls is offered goose, and the
// reverse. Anything else, including carts with both or neither, gets
// CategoryNone. Quantities, prices and other categories play no part.
func DecideUpsell(items []Item) Category {
	var hasDuck, hasGoose bool
	for _, it := range items {
		category := strings.ToLower(it.Category)
		if strings.Contains(category, string(CategoryDuck)) {
			hasDuck = true
		}
		if strings.Contains(category, string(CategoryGoose)) {
			hasGoose = true
		}
	}

	switch {
	case hasDuck && !hasGoose:
		return CategoryGoose
	case hasGoose && !hasDuck:
		return CategoryDuck
	default:
		return CategoryNone
	}
}
