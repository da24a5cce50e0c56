package repository

import (
	"context"

	"creator-payments/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	// FindByToken resolves the gateway callback token to its payment.
	FindByToken(ctx context.Context, tx Tx, token string) (*model.Payment, error)
	// MarkComplete transitions pending -> complete. Returns false when the
	// payment was not in pending (already complete), without modifying it.
	MarkComplete(ctx context.Context, tx Tx, id string) (bool, error)
	// ListComplete exists for the surrounding system's history views.
	ListComplete(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Payment, error)
}
