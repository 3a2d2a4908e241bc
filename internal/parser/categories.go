package parser

import (
	"strings"

	"github.com/finbrain/finbrain/internal/domain"
)

// categoryKeywords maps description tokens to the fixed taxonomy.
// First matching category in taxonomy order wins.
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryFood: {
		"coffee", "tea", "cha", "breakfast", "lunch", "dinner", "snack", "snacks",
		"burger", "pizza", "rice", "biryani", "juice", "water", "milk", "fruit",
		"food", "meal", "restaurant", "cafe", "grocery", "groceries", "bread",
		"egg", "chicken", "fish", "sweets", "cake", "chocolate",
	},
	domain.CategoryTransport: {
		"bus", "taxi", "uber", "pathao", "cng", "rickshaw", "train", "metro",
		"fuel", "petrol", "diesel", "fare", "ride", "transport", "flight", "toll",
		"parking",
	},
	domain.CategoryBills: {
		"bill", "bills", "electricity", "electric", "internet", "wifi", "phone",
		"mobile", "recharge", "topup", "top-up", "rent", "gas", "utility", "dish",
		"subscription",
	},
	domain.CategoryShopping: {
		"shirt", "pant", "pants", "shoe", "shoes", "dress", "saree", "clothes",
		"clothing", "shopping", "amazon", "daraz", "bag", "watch", "gift",
		"electronics", "gadget",
	},
	domain.CategoryHealth: {
		"medicine", "medicines", "med", "meds", "doctor", "pharmacy", "hospital",
		"clinic", "test", "checkup", "vitamin", "dental",
	},
	domain.CategoryEntertainment: {
		"movie", "cinema", "netflix", "spotify", "game", "games", "concert",
		"ticket", "tickets", "party", "outing",
	},
}

// Categorize maps an expense description to the fixed taxonomy.
// It is total: anything unrecognised lands in CategoryOther.
func Categorize(description string) domain.Category {
	normalized := domain.NormalizeText(description)
	if normalized == "" {
		return domain.CategoryOther
	}

	tokens := strings.Fields(normalized)
	for _, cat := range domain.Categories() {
		for _, kw := range categoryKeywords[cat] {
			for _, tok := range tokens {
				if tok == kw {
					return cat
				}
			}
		}
	}

	// Second pass: substring match catches compounds like "busfare".
	for _, cat := range domain.Categories() {
		for _, kw := range categoryKeywords[cat] {
			if len(kw) >= 4 && strings.Contains(normalized, kw) {
				return cat
			}
		}
	}

	return domain.CategoryOther
}
