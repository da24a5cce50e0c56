// File: internal/usecase/user_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	Get(ctx context.Context, id string) (*model.User, error)
	// SetPrice updates the caller's own base subscription price, bounded by
	// the configured cap. Minor units.
	SetPrice(ctx context.Context, userID string, price int64) (*model.User, error)
}

type userUC struct {
	users    repository.UserRepository
	priceCap int64
	log      *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, priceCap int64, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, priceCap: priceCap, log: logger}
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, nil, id)
}

func (u *userUC) SetPrice(ctx context.Context, userID string, price int64) (*model.User, error) {
	if price < 0 || price > u.priceCap {
		return nil, domain.ErrInvalidArgument
	}
	if err := u.users.UpdatePrice(ctx, nil, userID, price); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, nil, userID)
}
