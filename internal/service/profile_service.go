package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	dom "github.com/faham03/Gestion-de-budget/internal/domain"
	"github.com/faham03/Gestion-de-budget/internal/repo"
	"github.com/faham03/Gestion-de-budget/internal/utils"

	"github.com/jackc/pgx/v5"
)

const (
	maxBioLen   = 1000
	maxPhoneLen = 20
)

// ProfileService handles the per-user profile.
type ProfileService struct {
	repo repo.ProfileRepo
}

// NewProfileService returns a new ProfileService.
func NewProfileService(repo repo.ProfileRepo) *ProfileService {
	return &ProfileService{repo: repo}
}

// Ensure returns the user's profile, creating the default one if absent.
// Registration already creates the profile transactionally; this covers
// accounts that predate that behaviour, and is idempotent.
func (s *ProfileService) Ensure(ctx context.Context, userID int64) (dom.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dom.Profile{}, err
	}
	p, err = s.repo.CreateDefault(ctx, userID)
	if err != nil {
		// Lost the race against a concurrent Ensure: the profile exists now.
		if utils.IsPGUniqueViolation(err) {
			return s.repo.GetByUserID(ctx, userID)
		}
		return dom.Profile{}, err
	}
	return p, nil
}

// Update applies a partial update; nil fields keep their current value.
// On validation failure the stored profile is untouched.
func (s *ProfileService) Update(ctx context.Context, userID int64, bio, phone, currency *string) (dom.Profile, error) {
	p, err := s.Ensure(ctx, userID)
	if err != nil {
		return dom.Profile{}, err
	}
	if bio != nil {
		p.Bio = strings.TrimSpace(*bio)
	}
	if phone != nil {
		p.Phone = strings.TrimSpace(*phone)
	}
	if currency != nil {
		p.Currency = strings.TrimSpace(*currency)
	}
	if utf8.RuneCountInString(p.Bio) > maxBioLen {
		return dom.Profile{}, fieldErr("bio", "at most 1000 characters")
	}
	if utf8.RuneCountInString(p.Phone) > maxPhoneLen {
		return dom.Profile{}, fieldErr("phone", "at most 20 characters")
	}
	if !dom.ValidCurrency(p.Currency) {
		return dom.Profile{}, fieldErr("currency", "must be one of: "+strings.Join(dom.Currencies, ", "))
	}
	return s.repo.Update(ctx, userID, p)
}
