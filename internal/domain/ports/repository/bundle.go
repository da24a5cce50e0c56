package repository

import (
	"context"

	"creator-payments/internal/domain/model"
)

type BundleRepository interface {
	// Save upserts by (user, months): an existing row for the pair gets its
	// discount replaced, otherwise a new row is created.
	Save(ctx context.Context, tx Tx, b *model.Bundle) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Bundle, error)
	// FindByOwner returns the bundle only if it belongs to ownerID.
	FindByOwner(ctx context.Context, tx Tx, id, ownerID string) (*model.Bundle, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Bundle, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
