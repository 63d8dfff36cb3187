package repo

import (
	"context"
	"time"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseRepo provides expense persistence. Every lookup is scoped by the
// owning user in the same query, so a foreign id and a missing id are
// indistinguishable to the caller.
type ExpenseRepo interface {
	Create(ctx context.Context, e dom.Expense) (dom.Expense, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Expense, error)
	List(ctx context.Context, userID int64, from, to *time.Time) ([]dom.Expense, error)
	Update(ctx context.Context, userID, id int64, patch dom.Expense) (dom.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
}

// PGExpenseRepo implements ExpenseRepo with Postgres.
type PGExpenseRepo struct {
	db *pgxpool.Pool
}

func NewPGExpenseRepo(db *pgxpool.Pool) *PGExpenseRepo {
	return &PGExpenseRepo{db: db}
}

func (r *PGExpenseRepo) Create(ctx context.Context, e dom.Expense) (dom.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, description, amount, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, description, amount, category, date, created_at, updated_at`
	var out dom.Expense
	err := r.db.QueryRow(ctx, query, e.UserID, e.Description, e.Amount, e.Category, e.Date).Scan(
		&out.ID, &out.UserID, &out.Description, &out.Amount, &out.Category, &out.Date,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGExpenseRepo) GetByID(ctx context.Context, userID, id int64) (dom.Expense, error) {
	query := `
		SELECT id, user_id, description, amount, category, date, created_at, updated_at
		FROM expenses WHERE id = $1 AND user_id = $2`
	var e dom.Expense
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &e.Date,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// List returns the user's expenses ordered by date descending (ties broken by
// id descending). from/to bound the date as [from, to) when set.
func (r *PGExpenseRepo) List(ctx context.Context, userID int64, from, to *time.Time) ([]dom.Expense, error) {
	query := `
		SELECT id, user_id, description, amount, category, date, created_at, updated_at
		FROM expenses
		WHERE user_id = $1 AND ($2::date IS NULL OR date >= $2) AND ($3::date IS NULL OR date < $3)
		ORDER BY date DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Expense
	for rows.Next() {
		var e dom.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &e.Date,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *PGExpenseRepo) Update(ctx context.Context, userID, id int64, patch dom.Expense) (dom.Expense, error) {
	query := `
		UPDATE expenses SET description = $3, amount = $4, category = $5, date = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, description, amount, category, date, created_at, updated_at`
	var e dom.Expense
	err := r.db.QueryRow(ctx, query, id, userID, patch.Description, patch.Amount, patch.Category, patch.Date).Scan(
		&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &e.Date,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Delete removes the expense. Reports pgx.ErrNoRows when the id does not
// exist for this user.
func (r *PGExpenseRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
