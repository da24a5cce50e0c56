package repository

import (
	"context"

	"creator-payments/internal/domain/model"
)

// EntityCatalog answers "who owns this chargeable entity and what does it
// cost". The entities themselves (posts, messages, user profiles) live
// outside the payment core.
type EntityCatalog interface {
	Find(ctx context.Context, kind model.EntityKind, id string) (*model.PricedEntity, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// UpdatePrice sets the user's base subscription price in minor units.
	UpdatePrice(ctx context.Context, tx Tx, id string, price int64) error
}
