// File: internal/usecase/pricing_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PurchaseRefs carries the reference ids of a purchase request. Exactly the
// field matching the purchase type must be set; BundleID is optional and only
// meaningful for new subscriptions.
type PurchaseRefs struct {
	SubID     string
	PostID    string
	MessageID string
	BundleID  string
}

// ResolvedPurchase is the pricing decision a payment is created from. Amount
// and recipient are captured here and stored verbatim, never re-derived.
type ResolvedPurchase struct {
	ToID   string
	Amount int64
	Info   map[string]string
	// Target and Bundle are carried along for subscription dispatch.
	Target *model.User
	Bundle *model.Bundle
}

type PricingUseCase interface {
	// ResolvePurchase determines recipient and payable amount for a purchase
	// request under current pricing and discount rules. No side effects.
	ResolvePurchase(ctx context.Context, payerID string, typ model.PaymentType, refs PurchaseRefs) (*ResolvedPurchase, error)
}

type pricingUC struct {
	catalog repository.EntityCatalog
	users   repository.UserRepository
	bundles repository.BundleRepository
	log     *zerolog.Logger
}

func NewPricingUseCase(catalog repository.EntityCatalog, users repository.UserRepository, bundles repository.BundleRepository, logger *zerolog.Logger) *pricingUC {
	return &pricingUC{catalog: catalog, users: users, bundles: bundles, log: logger}
}

func (u *pricingUC) ResolvePurchase(ctx context.Context, payerID string, typ model.PaymentType, refs PurchaseRefs) (*ResolvedPurchase, error) {
	switch typ {
	case model.PaymentTypeSubscriptionNew:
		return u.resolveSubscription(ctx, payerID, refs)
	case model.PaymentTypePost:
		return u.resolveEntity(ctx, payerID, model.EntityKindPost, refs.PostID, model.InfoKeyPost)
	case model.PaymentTypeMessage:
		return u.resolveEntity(ctx, payerID, model.EntityKindMessage, refs.MessageID, model.InfoKeyMessage)
	default:
		return nil, domain.ErrInvalidArgument
	}
}

func (u *pricingUC) resolveSubscription(ctx context.Context, payerID string, refs PurchaseRefs) (*ResolvedPurchase, error) {
	target, err := u.users.FindByID(ctx, nil, refs.SubID)
	if err != nil {
		return nil, err
	}
	if target.ID == payerID {
		return nil, domain.ErrSelfPurchase
	}

	info := map[string]string{model.InfoKeySub: target.ID}
	amount := target.Price

	var bundle *model.Bundle
	if refs.BundleID != "" {
		// The bundle must belong to the target user's tier set; a miss is a
		// NotFound, never a silent fallback to the base price.
		bundle, err = u.bundles.FindByOwner(ctx, nil, refs.BundleID, target.ID)
		if err != nil {
			return nil, err
		}
		info[model.InfoKeyBundle] = bundle.ID
		amount = bundle.Price(target.Price)
	}

	return &ResolvedPurchase{ToID: target.ID, Amount: amount, Info: info, Target: target, Bundle: bundle}, nil
}

func (u *pricingUC) resolveEntity(ctx context.Context, payerID string, kind model.EntityKind, id, infoKey string) (*ResolvedPurchase, error) {
	ent, err := u.catalog.Find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if ent.OwnerID == payerID {
		return nil, domain.ErrSelfPurchase
	}
	return &ResolvedPurchase{
		ToID:   ent.OwnerID,
		Amount: ent.Price,
		Info:   map[string]string{infoKey: ent.ID},
	}, nil
}
