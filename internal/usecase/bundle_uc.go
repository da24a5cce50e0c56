// File: internal/usecase/bundle_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/repository"
	"creator-payments/internal/infra/metrics"
)

// Compile-time check
var _ BundleUseCase = (*bundleUC)(nil)

const (
	bundleMinMonths = 2
	bundleMaxMonths = 12
)

type BundleUseCase interface {
	// Upsert creates or updates the owner's tier for the given duration.
	// At most one bundle exists per (owner, months).
	Upsert(ctx context.Context, userID string, months, discount int) ([]*model.Bundle, error)
	Delete(ctx context.Context, bundleID, actingUserID string) ([]*model.Bundle, error)
}

type bundleUC struct {
	bundles     repository.BundleRepository
	discountCap int
	log         *zerolog.Logger
}

func NewBundleUseCase(bundles repository.BundleRepository, discountCap int, logger *zerolog.Logger) *bundleUC {
	return &bundleUC{bundles: bundles, discountCap: discountCap, log: logger}
}

func (u *bundleUC) Upsert(ctx context.Context, userID string, months, discount int) ([]*model.Bundle, error) {
	if months < bundleMinMonths || months > bundleMaxMonths {
		return nil, domain.ErrInvalidArgument
	}
	if discount < 0 || discount > u.discountCap {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	b := &model.Bundle{
		ID:        uuid.NewString(),
		UserID:    userID,
		Months:    months,
		Discount:  discount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.bundles.Save(ctx, nil, b); err != nil {
		return nil, err
	}
	metrics.IncBundleOp("upsert")
	return u.bundles.ListByUser(ctx, nil, userID)
}

func (u *bundleUC) Delete(ctx context.Context, bundleID, actingUserID string) ([]*model.Bundle, error) {
	b, err := u.bundles.FindByID(ctx, nil, bundleID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}
	if err := u.bundles.Delete(ctx, nil, b.ID); err != nil {
		return nil, err
	}
	metrics.IncBundleOp("delete")
	return u.bundles.ListByUser(ctx, nil, actingUserID)
}
