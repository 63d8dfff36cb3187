package repo

import (
	"context"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepo provides profile persistence. Profiles are keyed by their
// owning user, never addressed by their own id from outside.
type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID int64) (dom.Profile, error)
	CreateDefault(ctx context.Context, userID int64) (dom.Profile, error)
	Update(ctx context.Context, userID int64, p dom.Profile) (dom.Profile, error)
}

// PGProfileRepo implements ProfileRepo with Postgres.
type PGProfileRepo struct {
	db *pgxpool.Pool
}

// NewPGProfileRepo returns a new PGProfileRepo.
func NewPGProfileRepo(db *pgxpool.Pool) *PGProfileRepo {
	return &PGProfileRepo{db: db}
}

func (r *PGProfileRepo) GetByUserID(ctx context.Context, userID int64) (dom.Profile, error) {
	var p dom.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, bio, phone, currency, created_at, updated_at
		FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.ID, &p.UserID, &p.Bio, &p.Phone, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateDefault inserts an empty profile with the default currency.
func (r *PGProfileRepo) CreateDefault(ctx context.Context, userID int64) (dom.Profile, error) {
	var p dom.Profile
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, currency)
		VALUES ($1, $2)
		RETURNING id, user_id, bio, phone, currency, created_at, updated_at`,
		userID, dom.DefaultCurrency,
	).Scan(&p.ID, &p.UserID, &p.Bio, &p.Phone, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PGProfileRepo) Update(ctx context.Context, userID int64, p dom.Profile) (dom.Profile, error) {
	var out dom.Profile
	err := r.db.QueryRow(ctx, `
		UPDATE profiles SET bio = $2, phone = $3, currency = $4, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, bio, phone, currency, created_at, updated_at`,
		userID, p.Bio, p.Phone, p.Currency,
	).Scan(&out.ID, &out.UserID, &out.Bio, &out.Phone, &out.Currency, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}
