// Package export serializes ledger views for download.
package export

import (
	"encoding/csv"
	"io"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"
)

// Filename is the attachment name for an export, month filter included when set.
func Filename(month string) string {
	if month == "" {
		return "expenses.csv"
	}
	return "expenses_" + month + ".csv"
}

// WriteCSV streams the expenses as CSV: a header row naming the profile
// currency, then one row per expense with the amount fixed to 2 decimal
// places. encoding/csv handles quoting of delimiters and quotes.
func WriteCSV(w io.Writer, currency string, expenses []dom.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Category", "Amount (" + currency + ")"}); err != nil {
		return err
	}
	for _, e := range expenses {
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Description,
			e.Category,
			e.Amount.StringFixed(2) + " " + currency,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
