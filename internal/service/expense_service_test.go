package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExpenseRepo is an in-memory ExpenseRepo with the same ownership
// semantics as the Postgres one: id and owner are matched together.
type fakeExpenseRepo struct {
	nextID int64
	items  map[int64]dom.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{items: make(map[int64]dom.Expense)}
}

func (f *fakeExpenseRepo) Create(_ context.Context, e dom.Expense) (dom.Expense, error) {
	f.nextID++
	e.ID = f.nextID
	f.items[e.ID] = e
	return e, nil
}

func (f *fakeExpenseRepo) GetByID(_ context.Context, userID, id int64) (dom.Expense, error) {
	e, ok := f.items[id]
	if !ok || e.UserID != userID {
		return dom.Expense{}, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeExpenseRepo) List(_ context.Context, userID int64, from, to *time.Time) ([]dom.Expense, error) {
	var list []dom.Expense
	for _, e := range f.items {
		if e.UserID != userID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && !e.Date.Before(*to) {
			continue
		}
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (f *fakeExpenseRepo) Update(_ context.Context, userID, id int64, patch dom.Expense) (dom.Expense, error) {
	e, ok := f.items[id]
	if !ok || e.UserID != userID {
		return dom.Expense{}, pgx.ErrNoRows
	}
	patch.ID = e.ID
	patch.UserID = e.UserID
	f.items[id] = patch
	return patch, nil
}

func (f *fakeExpenseRepo) Delete(_ context.Context, userID, id int64) error {
	e, ok := f.items[id]
	if !ok || e.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

// fakeLedgerCache keeps lists per (user, month) and counts invalidations,
// standing in for the Redis-backed cache.
type fakeLedgerCache struct {
	lists       map[string][]dom.Expense
	invalidated int
}

func newFakeLedgerCache() *fakeLedgerCache {
	return &fakeLedgerCache{lists: make(map[string][]dom.Expense)}
}

func cacheKey(userID int64, month string) string {
	return strconv.FormatInt(userID, 10) + ":" + month
}

func (f *fakeLedgerCache) GetList(_ context.Context, userID int64, month string) ([]dom.Expense, error) {
	return f.lists[cacheKey(userID, month)], nil
}

func (f *fakeLedgerCache) SetList(_ context.Context, userID int64, month string, list []dom.Expense) error {
	f.lists[cacheKey(userID, month)] = list
	return nil
}

func (f *fakeLedgerCache) InvalidateUser(_ context.Context, userID int64) error {
	prefix := strconv.FormatInt(userID, 10) + ":"
	for k := range f.lists {
		if strings.HasPrefix(k, prefix) {
			delete(f.lists, k)
		}
	}
	f.invalidated++
	return nil
}

func freeSvc() (*ExpenseService, *fakeExpenseRepo) {
	r := newFakeExpenseRepo()
	return NewExpenseService(r, nil, CategoryPolicy{Enum: false}), r
}

func enumSvc() *ExpenseService {
	return NewExpenseService(newFakeExpenseRepo(), nil, CategoryPolicy{Enum: true, Allowed: dom.DefaultCategories})
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func amtPtr(s string) *decimal.Decimal {
	d := amt(s)
	return &d
}

func TestCreateExpense(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.50"), "Food", day("2024-01-15"))
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, int64(1), e.UserID)
	assert.Equal(t, "12.50", e.Amount.StringFixed(2))
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := enumSvc()
	ctx := context.Background()

	cases := []struct {
		name        string
		description string
		amount      *decimal.Decimal
		category    string
		date        *time.Time
		field       string
	}{
		{"missing amount", "Lunch", nil, "Transport", day("2024-01-01"), "amount"},
		{"negative amount", "Lunch", amtPtr("-0.01"), "Transport", day("2024-01-01"), "amount"},
		{"too many decimals", "Lunch", amtPtr("1.005"), "Transport", day("2024-01-01"), "amount"},
		{"too large", "Lunch", amtPtr("1000000.00"), "Transport", day("2024-01-01"), "amount"},
		{"empty description", "  ", amtPtr("1.00"), "Transport", day("2024-01-01"), "description"},
		{"long description", strings.Repeat("x", 201), amtPtr("1.00"), "Transport", day("2024-01-01"), "description"},
		{"category not in enum", "Lunch", amtPtr("1.00"), "Gadgets", day("2024-01-01"), "category"},
		{"missing date", "Lunch", amtPtr("1.00"), "Transport", nil, "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tc.description, tc.amount, tc.category, tc.date)
			fe, ok := AsFieldError(err)
			require.True(t, ok, "expected a field error, got %v", err)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestCreateExpenseAmountBoundaries(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "Free sample", amtPtr("0.00"), "Food", day("2024-01-01"))
	assert.NoError(t, err)

	_, err = svc.Create(ctx, 1, "Refund?", amtPtr("-0.01"), "Food", day("2024-01-01"))
	fe, ok := AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "amount", fe.Field)
}

func TestFreePolicyAcceptsAnyCategory(t *testing.T) {
	svc, _ := freeSvc()
	_, err := svc.Create(context.Background(), 1, "Board games", amtPtr("30.00"), "Whatever", day("2024-01-01"))
	assert.NoError(t, err)
}

func TestAmountRoundTripExact(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.50"), "Food", day("2024-01-15"))
	require.NoError(t, err)

	// Repeated read/aggregate cycles must not drift.
	for i := 0; i < 10; i++ {
		got, err := svc.Get(ctx, 1, created.ID)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(amt("12.50")), "got %s", got.Amount)

		list, err := svc.List(ctx, 1, "")
		require.NoError(t, err)
		totals := SummarizeByCategory(list)
		assert.True(t, totals["Food"].Equal(amt("12.50")), "got %s", totals["Food"])
	}
}

func TestOwnershipScoping(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	mine, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.00"), "Food", day("2024-01-01"))
	require.NoError(t, err)

	// Another user sees an id they don't own exactly like a missing one.
	_, err = svc.Get(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	desc := "hijack"
	_, err = svc.Update(ctx, 2, mine.ID, UpdatePatch{Description: &desc})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 2, mine.ID), ErrNotFound)

	list, err := svc.List(ctx, 2, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	// And the record is untouched for its owner.
	got, err := svc.Get(ctx, 1, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", got.Description)
}

func TestListMonthFilter(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "January", amtPtr("10.00"), "Food", day("2024-01-15"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "February", amtPtr("20.00"), "Food", day("2024-02-01"))
	require.NoError(t, err)

	list, err := svc.List(ctx, 1, "2024-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "January", list[0].Description)

	list, err = svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	// Ordered by date descending.
	assert.Equal(t, "February", list[0].Description)

	_, err = svc.List(ctx, 1, "2024-13")
	fe, ok := AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "month", fe.Field)
}

func TestSummarizeByCategory(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "Groceries", amtPtr("10.00"), "A", day("2024-01-01"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "Snacks", amtPtr("5.50"), "A", day("2024-01-02"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "Bus", amtPtr("3.00"), "B", day("2024-01-03"))
	require.NoError(t, err)

	list, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	totals := SummarizeByCategory(list)

	require.Len(t, totals, 2)
	assert.True(t, totals["A"].Equal(amt("15.50")), "A = %s", totals["A"])
	assert.True(t, totals["B"].Equal(amt("3.00")), "B = %s", totals["B"])
	_, present := totals["C"]
	assert.False(t, present, "empty categories must be absent, not zero")

	assert.True(t, Total(list).Equal(amt("18.50")))
}

func TestUpdateExpense(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.00"), "Food", day("2024-01-01"))
	require.NoError(t, err)

	newAmount := amt("13.25")
	updated, err := svc.Update(ctx, 1, e.ID, UpdatePatch{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, "Lunch", updated.Description, "unset fields keep their value")
	assert.True(t, updated.Amount.Equal(amt("13.25")))

	// A failing update leaves the stored record untouched.
	bad := amt("-5.00")
	_, err = svc.Update(ctx, 1, e.ID, UpdatePatch{Amount: &bad})
	fe, ok := AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "amount", fe.Field)

	got, err := svc.Get(ctx, 1, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(amt("13.25")))
}

func TestDeleteExpense(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.00"), "Food", day("2024-01-01"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, e.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, e.ID), ErrNotFound)
	_, err = svc.Get(ctx, 1, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWritesInvalidateCachedList(t *testing.T) {
	r := newFakeExpenseRepo()
	c := newFakeLedgerCache()
	svc := NewExpenseService(r, c, CategoryPolicy{Enum: false})
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, "Lunch", amtPtr("12.00"), "Food", day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.invalidated)

	// Fill the cache, then make sure every write drops it so the next read
	// reflects the change instead of the cached list.
	list, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Create(ctx, 1, "Bus", amtPtr("3.00"), "Transport", day("2024-01-02"))
	require.NoError(t, err)
	list, err = svc.List(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	newAmount := amt("13.50")
	_, err = svc.Update(ctx, 1, first.ID, UpdatePatch{Amount: &newAmount})
	require.NoError(t, err)
	list, err = svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.True(t, list[1].Amount.Equal(amt("13.50")), "got %s", list[1].Amount)

	require.NoError(t, svc.Delete(ctx, 1, first.ID))
	list, err = svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Equal(t, 4, c.invalidated)
}

func TestCreateManyPartialSuccess(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	created, results, err := svc.CreateMany(ctx, 1, []BatchRow{
		{Description: "Lunch", Amount: "12.00", Category: "Food", Date: "2024-01-01"},
		{Description: "", Amount: "5.00", Category: "Food", Date: "2024-01-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, results, 2)

	assert.True(t, results[0].Created)
	assert.NotZero(t, results[0].ID)
	assert.False(t, results[1].Created)
	assert.Equal(t, "missing description", results[1].Reason)

	list, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lunch", list[0].Description)
}

func TestCreateManySkipsInvalidRowsWithoutRollback(t *testing.T) {
	svc, _ := freeSvc()
	ctx := context.Background()

	created, results, err := svc.CreateMany(ctx, 1, []BatchRow{
		{Description: "OK 1", Amount: "1.00", Category: "Food", Date: "2024-01-01"},
		{Description: "Bad amount", Amount: "abc", Category: "Food", Date: "2024-01-01"},
		{Description: "Bad date", Amount: "1.00", Category: "Food", Date: "01/01/2024"},
		{Description: "Negative", Amount: "-1.00", Category: "Food", Date: "2024-01-01"},
		{Description: "OK 2", Amount: "2.00", Category: "Food", Date: "2024-01-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, results, 5)
	assert.Equal(t, "invalid amount", results[1].Reason)
	assert.Equal(t, "invalid date", results[2].Reason)
	assert.Contains(t, results[3].Reason, "amount")

	// Earlier successful rows stay created.
	list, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
