package repository

import (
	"context"

	"creator-payments/internal/domain/model"
)

type PaymentMethodRepository interface {
	Save(ctx context.Context, tx Tx, m *model.PaymentMethod) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentMethod, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentMethod, error)
	// SetMain re-sweeps every method of the owner: main = (id == methodID).
	// Runs as a single statement so any prior inconsistency is repaired.
	SetMain(ctx context.Context, tx Tx, ownerID, methodID string) error
	// HasMain reports whether the owner currently has a main method.
	HasMain(ctx context.Context, tx Tx, ownerID string) (bool, error)
	// PromoteAny marks an arbitrary remaining method of the owner as main.
	// No-op when the owner has no methods.
	PromoteAny(ctx context.Context, tx Tx, ownerID string) error
	Delete(ctx context.Context, tx Tx, id string) error
}
