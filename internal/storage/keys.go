package storage

// Each piece of state lives under its own key so a format change to one
// does not invalidate the others.
var (
	KeyExpenses   = Key{Name: "expenses", Version: 1}
	KeyCategories = Key{Name: "categories", Version: 1}
	KeyBudget     = Key{Name: "budget", Version: 1}
	KeyTheme      = Key{Name: "theme", Version: 1}
	KeyCurrency   = Key{Name: "currency", Version: 1}
	KeyDeviceID   = Key{Name: "device-id", Version: 1}
	KeyOnboarding = Key{Name: "onboarding", Version: 1}
)

// AllKeys lists every persisted key.
func AllKeys() []Key {
	return []Key{
		KeyExpenses,
		KeyCategories,
		KeyBudget,
		KeyTheme,
		KeyCurrency,
		KeyDeviceID,
		KeyOnboarding,
	}
}
