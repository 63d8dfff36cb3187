package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseDate parses a calendar date ("2006-01-02") from JSON. Expenses carry
// no time component; the date is stored as midnight UTC.
type ExpenseDate struct{ t *time.Time }

func (d *ExpenseDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return fmt.Errorf("date: use YYYY-MM-DD")
	}
	parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	d.t = &parsed
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d ExpenseDate) Ptr() *time.Time { return d.t }

type CreateExpenseRequest struct {
	Description string           `json:"description" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"` // absent != 0.00; nil is rejected downstream
	Category    string           `json:"category" binding:"required"`
	Date        ExpenseDate      `json:"date"`
}

// BatchCreateExpensesRequest carries parallel sequences of equal length, one
// position per row.
type BatchCreateExpensesRequest struct {
	Descriptions []string `json:"descriptions"`
	Amounts      []string `json:"amounts"`
	Categories   []string `json:"categories"`
	Dates        []string `json:"dates"`
}

type UpdateExpenseRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Date        *ExpenseDate     `json:"date"`
}

type ExpenseResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// LedgerResponse is the list view: the filtered expenses plus the per-category
// sums over the same set.
type LedgerResponse struct {
	Items            []ExpenseResponse `json:"items"`
	TotalsByCategory map[string]string `json:"totals_by_category"`
	Total            string            `json:"total"`
	Month            string            `json:"month,omitempty"`
}

// BatchRowResult reports the outcome of one batch row.
type BatchRowResult struct {
	Row    int    `json:"row"`
	Status string `json:"status"` // "created" or "skipped"
	ID     int64  `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type BatchCreateExpensesResponse struct {
	Created int              `json:"created"`
	Results []BatchRowResult `json:"results"`
}
