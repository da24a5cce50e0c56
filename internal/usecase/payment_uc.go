// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/domain/ports/repository"
	"creator-payments/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// CreateAndDispatch persists a pending payment from a resolved purchase
	// and invokes the driver's buy or subscribe protocol. The driver response
	// is returned verbatim. A dispatch failure leaves the record pending.
	CreateAndDispatch(ctx context.Context, payerID string, typ model.PaymentType, gatewayID string, res *ResolvedPurchase) (*model.Payment, adapter.Response, error)
	// ConfirmFromCallback reconciles an inbound gateway notification into the
	// payment lifecycle. Safe under duplicate delivery: a payment is
	// processed at most once, and re-confirming a complete payment succeeds
	// without touching the gateway again.
	ConfirmFromCallback(ctx context.Context, gatewayID string, req *adapter.CallbackRequest) (*model.Payment, adapter.Response, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	registry adapter.GatewayRegistry
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewPaymentUseCase(payments repository.PaymentRepository, registry adapter.GatewayRegistry, tm repository.TransactionManager, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{payments: payments, registry: registry, tm: tm, log: logger}
}

func (u *paymentUC) CreateAndDispatch(ctx context.Context, payerID string, typ model.PaymentType, gatewayID string, res *ResolvedPurchase) (*model.Payment, adapter.Response, error) {
	driver, err := u.enabledDriver(gatewayID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	p := &model.Payment{
		ID:        uuid.NewString(),
		UserID:    payerID,
		ToID:      res.ToID,
		Type:      typ,
		Info:      res.Info,
		Amount:    res.Amount,
		Gateway:   driver.ID(),
		Token:     newToken(),
		Status:    model.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.payments.Save(ctx, nil, p); err != nil {
		return nil, nil, err
	}
	metrics.IncPayment(string(model.PaymentStatusPending))

	var resp adapter.Response
	if typ == model.PaymentTypeSubscriptionNew {
		resp, err = driver.Subscribe(ctx, p, res.Target, res.Bundle)
	} else {
		resp, err = driver.Buy(ctx, p)
	}
	if err != nil {
		// The record stays pending; the gateway may still call back later.
		u.log.Warn().Str("payment_id", p.ID).Str("gateway", driver.ID()).Err(err).Msg("dispatch failed")
		return p, nil, fmt.Errorf("dispatch %s: %w", driver.ID(), err)
	}
	return p, resp, nil
}

func (u *paymentUC) ConfirmFromCallback(ctx context.Context, gatewayID string, req *adapter.CallbackRequest) (*model.Payment, adapter.Response, error) {
	driver, err := u.registry.Driver(gatewayID)
	if err != nil {
		return nil, nil, err
	}

	p, err := driver.ValidateCallback(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("validate callback: %w", err)
	}
	if p == nil {
		metrics.IncCallback(gatewayID, "rejected")
		return nil, nil, domain.ErrUnprocessable
	}

	var (
		out  *model.Payment
		resp adapter.Response
	)
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Row lock serializes concurrent retries for the same payment; the
		// conditional update below is the linearization point.
		fresh, err := u.payments.FindByID(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if fresh.Complete() {
			out = fresh
			return nil
		}
		r, err := u.registry.ProcessPayment(ctx, fresh)
		if err != nil {
			return fmt.Errorf("process payment: %w", err)
		}
		ok, err := u.payments.MarkComplete(ctx, tx, fresh.ID)
		if err != nil {
			return err
		}
		if ok {
			fresh.Status = model.PaymentStatusComplete
		}
		out, resp = fresh, r
		return nil
	})
	if err != nil {
		metrics.IncCallback(gatewayID, "error")
		return nil, nil, err
	}

	metrics.IncCallback(gatewayID, "confirmed")
	if resp != nil {
		metrics.AddPaymentRevenue(out.Gateway, out.Amount)
	}
	return out, resp, nil
}

func (u *paymentUC) enabledDriver(id string) (adapter.GatewayDriver, error) {
	for _, d := range u.registry.Enabled() {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, domain.ErrGatewayDisabled
}

// newToken produces the opaque reference handed to the gateway and matched
// back on callback. ULIDs keep tokens sortable by creation time.
func newToken() string {
	return ulid.Make().String()
}
