package domain

// Intent represents the routing outcome for an inbound message.
type Intent string

const (
	IntentLog         Intent = "log"
	IntentSummary     Intent = "summary"
	IntentUndo        Intent = "undo"
	IntentHelp        Intent = "help"
	IntentRateLimited Intent = "rate_limited"
	IntentError       Intent = "error"
)

func (i Intent) String() string { return string(i) }

func (i Intent) IsValid() bool {
	switch i {
	case IntentLog, IntentSummary, IntentUndo, IntentHelp, IntentRateLimited, IntentError:
		return true
	}
	return false
}

// LogsExpense reports whether the intent implies an expense was persisted.
// Amount and category on a decision may only be populated for such intents.
func (i Intent) LogsExpense() bool {
	return i == IntentLog
}

// Category represents the fixed expense taxonomy.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryBills         Category = "bills"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryBills, CategoryShopping,
		CategoryHealth, CategoryEntertainment, CategoryOther:
		return true
	}
	return false
}

// Categories lists the taxonomy in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryBills,
		CategoryShopping,
		CategoryHealth,
		CategoryEntertainment,
		CategoryOther,
	}
}
