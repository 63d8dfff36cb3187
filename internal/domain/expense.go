package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategories is the enum used when the category policy is "enum".
var DefaultCategories = []string{"Alimentation", "Transport", "Loisirs"}

// Expense is a single ledger entry owned by exactly one user.
// Amount is exact fixed-point (2 fractional digits); Date carries no
// time component and is kept at midnight UTC.
type Expense struct {
	ID          int64
	UserID      int64
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
