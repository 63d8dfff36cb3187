package domain

import "time"

// DefaultCurrency is assigned to every freshly created profile.
const DefaultCurrency = "€"

// Currencies is the closed set of currency symbols a profile may use.
var Currencies = []string{"€", "$", "FCFA", "£", "¥"}

// ValidCurrency reports whether s is one of the allowed currency symbols.
func ValidCurrency(s string) bool {
	for _, c := range Currencies {
		if s == c {
			return true
		}
	}
	return false
}

// Profile holds per-user settings. Exactly one exists per user; it is
// created in the same transaction as the user row and only removed by
// the cascading user delete.
type Profile struct {
	ID        int64
	UserID    int64
	Bio       string
	Phone     string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
