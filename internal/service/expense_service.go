package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"
	"github.com/faham03/Gestion-de-budget/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	maxDescriptionLen = 200
	maxCategoryLen    = 100
)

// maxAmount is exclusive: numeric(8,2) holds at most 8 digits, 2 of them
// fractional, so amounts stay below 10^6.
var maxAmount = decimal.New(1, 6)

// CategoryPolicy controls validation of the category field.
type CategoryPolicy struct {
	// Enum restricts categories to Allowed; otherwise any non-empty short
	// string is accepted.
	Enum    bool
	Allowed []string
}

func (p CategoryPolicy) allows(category string) bool {
	if !p.Enum {
		return true
	}
	for _, c := range p.Allowed {
		if category == c {
			return true
		}
	}
	return false
}

// BatchRow is one raw row of a batch create, fields as submitted.
type BatchRow struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// RowOutcome reports what happened to one batch row.
type RowOutcome struct {
	Row     int
	Created bool
	ID      int64
	Reason  string
}

// LedgerCache caches filtered expense lists per (user, month) and drops a
// user's entries on write. *cache.LedgerCache is the Redis implementation.
type LedgerCache interface {
	GetList(ctx context.Context, userID int64, month string) ([]dom.Expense, error)
	SetList(ctx context.Context, userID int64, month string, list []dom.Expense) error
	InvalidateUser(ctx context.Context, userID int64) error
}

// ExpenseService owns validation and ledger rules for expenses.
type ExpenseService struct {
	repo   repo.ExpenseRepo
	cache  LedgerCache
	policy CategoryPolicy
	sf     singleflight.Group
}

// NewExpenseService creates an ExpenseService. If c is nil, caching is disabled.
func NewExpenseService(r repo.ExpenseRepo, c LedgerCache, policy CategoryPolicy) *ExpenseService {
	return &ExpenseService{repo: r, cache: c, policy: policy}
}

// Create validates and persists a new expense owned by userID. A nil amount
// means the field was absent from the request.
func (s *ExpenseService) Create(ctx context.Context, userID int64, description string, amount *decimal.Decimal, category string, date *time.Time) (dom.Expense, error) {
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if amount == nil {
		return dom.Expense{}, fieldErr("amount", "required")
	}
	if err := s.validate(description, *amount, category, date); err != nil {
		return dom.Expense{}, err
	}
	e, err := s.repo.Create(ctx, dom.Expense{
		UserID:      userID,
		Description: description,
		Amount:      *amount,
		Category:    category,
		Date:        *date,
	})
	if err != nil {
		return dom.Expense{}, err
	}
	s.invalidateCache(ctx, userID)
	return e, nil
}

// CreateMany creates expenses row by row. A row with an empty field, an
// unparseable value or a validation failure is skipped; earlier rows are
// never rolled back. Returns the created count and a per-row outcome list.
func (s *ExpenseService) CreateMany(ctx context.Context, userID int64, rows []BatchRow) (int, []RowOutcome, error) {
	outcomes := make([]RowOutcome, 0, len(rows))
	created := 0
	for i, row := range rows {
		outcome := RowOutcome{Row: i}
		if reason, ok := missingField(row); ok {
			outcome.Reason = reason
			outcomes = append(outcomes, outcome)
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
		if err != nil {
			outcome.Reason = "invalid amount"
			outcomes = append(outcomes, outcome)
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
		if err != nil {
			outcome.Reason = "invalid date"
			outcomes = append(outcomes, outcome)
			continue
		}
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		e, err := s.Create(ctx, userID, row.Description, &amount, row.Category, &date)
		if err != nil {
			if fe, ok := AsFieldError(err); ok {
				outcome.Reason = fe.Error()
				outcomes = append(outcomes, outcome)
				continue
			}
			// Storage failure: stop here, rows already created stay created.
			return created, outcomes, err
		}
		outcome.Created = true
		outcome.ID = e.ID
		created++
		outcomes = append(outcomes, outcome)
	}
	return created, outcomes, nil
}

// List returns the user's expenses, optionally restricted to a "YYYY-MM"
// month, ordered by date descending.
func (s *ExpenseService) List(ctx context.Context, userID int64, month string) ([]dom.Expense, error) {
	from, to, err := monthRange(month)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(userID, 10) + ":" + month
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID, month); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID, from, to)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, month, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Expense), nil
	}
	return s.repo.List(ctx, userID, from, to)
}

// Get returns one expense owned by userID.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (dom.Expense, error) {
	e, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Expense{}, ErrNotFound
		}
		return dom.Expense{}, err
	}
	return e, nil
}

// UpdatePatch carries the mutable fields of an expense; nil = keep current.
type UpdatePatch struct {
	Description *string
	Amount      *decimal.Decimal
	Category    *string
	Date        *time.Time
}

// Update applies a partial update to an expense owned by userID.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, patchFields UpdatePatch) (dom.Expense, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Expense{}, ErrNotFound
		}
		return dom.Expense{}, err
	}
	patch := existing
	if patchFields.Description != nil {
		patch.Description = strings.TrimSpace(*patchFields.Description)
	}
	if patchFields.Amount != nil {
		patch.Amount = *patchFields.Amount
	}
	if patchFields.Category != nil {
		patch.Category = strings.TrimSpace(*patchFields.Category)
	}
	if patchFields.Date != nil {
		patch.Date = *patchFields.Date
	}
	if err := s.validate(patch.Description, patch.Amount, patch.Category, &patch.Date); err != nil {
		return dom.Expense{}, err
	}
	e, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Expense{}, ErrNotFound
		}
		return dom.Expense{}, err
	}
	s.invalidateCache(ctx, userID)
	return e, nil
}

// Delete removes an expense owned by userID.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// SummarizeByCategory sums amounts per category with exact decimal
// arithmetic. Categories without expenses are absent from the result.
func SummarizeByCategory(list []dom.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(list))
	for _, e := range list {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// Total sums all amounts of the list.
func Total(list []dom.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total
}

func (s *ExpenseService) validate(description string, amount decimal.Decimal, category string, date *time.Time) error {
	if description == "" {
		return fieldErr("description", "required")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return fieldErr("description", "at most 200 characters")
	}
	if amount.IsNegative() {
		return fieldErr("amount", "must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return fieldErr("amount", "at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fieldErr("amount", "must be below 1000000")
	}
	if category == "" {
		return fieldErr("category", "required")
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return fieldErr("category", "at most 100 characters")
	}
	if !s.policy.allows(category) {
		return fieldErr("category", "must be one of: "+strings.Join(s.policy.Allowed, ", "))
	}
	if date == nil {
		return fieldErr("date", "required")
	}
	return nil
}

func (s *ExpenseService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}

func missingField(row BatchRow) (string, bool) {
	switch {
	case strings.TrimSpace(row.Description) == "":
		return "missing description", true
	case strings.TrimSpace(row.Amount) == "":
		return "missing amount", true
	case strings.TrimSpace(row.Category) == "":
		return "missing category", true
	case strings.TrimSpace(row.Date) == "":
		return "missing date", true
	}
	return "", false
}

// monthRange converts "YYYY-MM" into the [first, first of next month) date
// window. Empty month means no filter.
func monthRange(month string) (*time.Time, *time.Time, error) {
	if month == "" {
		return nil, nil, nil
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, nil, fieldErr("month", "use YYYY-MM")
	}
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return &from, &to, nil
}
