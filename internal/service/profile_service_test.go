package service

import (
	"context"
	"testing"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfileRepo mimics the unique user_id constraint of the real table.
type fakeProfileRepo struct {
	nextID   int64
	byUserID map[int64]dom.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUserID: make(map[int64]dom.Profile)}
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID int64) (dom.Profile, error) {
	p, ok := f.byUserID[userID]
	if !ok {
		return dom.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProfileRepo) CreateDefault(_ context.Context, userID int64) (dom.Profile, error) {
	if _, ok := f.byUserID[userID]; ok {
		return dom.Profile{}, &pgconn.PgError{Code: "23505"}
	}
	f.nextID++
	p := dom.Profile{ID: f.nextID, UserID: userID, Currency: dom.DefaultCurrency}
	f.byUserID[userID] = p
	return p, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, userID int64, p dom.Profile) (dom.Profile, error) {
	existing, ok := f.byUserID[userID]
	if !ok {
		return dom.Profile{}, pgx.ErrNoRows
	}
	p.ID = existing.ID
	p.UserID = userID
	f.byUserID[userID] = p
	return p, nil
}

func TestEnsureProfileIdempotent(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)
	ctx := context.Background()

	first, err := svc.Ensure(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, dom.DefaultCurrency, first.Currency)
	assert.Empty(t, first.Bio)
	assert.Empty(t, first.Phone)

	second, err := svc.Ensure(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byUserID, 1, "no duplicate profile")
}

func TestEnsureProfileLosesCreateRace(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)
	ctx := context.Background()

	// Profile appears between the miss and the create: repo reports the
	// unique violation and Ensure falls back to the existing row.
	existing, err := repo.CreateDefault(ctx, 7)
	require.NoError(t, err)

	p, err := svc.Ensure(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())
	ctx := context.Background()

	bio := "Étudiant en informatique"
	phone := "0612345678"
	currency := "FCFA"
	p, err := svc.Update(ctx, 1, &bio, &phone, &currency)
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, phone, p.Phone)
	assert.Equal(t, "FCFA", p.Currency)

	// Partial update keeps the other fields.
	newPhone := "0700000000"
	p, err = svc.Update(ctx, 1, nil, &newPhone, nil)
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, newPhone, p.Phone)
	assert.Equal(t, "FCFA", p.Currency)
}

func TestUpdateProfileValidation(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)
	ctx := context.Background()

	_, err := svc.Ensure(ctx, 1)
	require.NoError(t, err)

	bad := "USD"
	_, err = svc.Update(ctx, 1, nil, nil, &bad)
	fe, ok := AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "currency", fe.Field)

	longPhone := "012345678901234567890"
	_, err = svc.Update(ctx, 1, nil, &longPhone, nil)
	fe, ok = AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "phone", fe.Field)

	// Failed updates leave the stored profile untouched.
	p, err := svc.Ensure(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, dom.DefaultCurrency, p.Currency)
	assert.Empty(t, p.Phone)
}
