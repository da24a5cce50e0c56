// File: internal/infra/gateway/noop.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/domain/ports/repository"
)

var _ adapter.GatewayDriver = (*NoopDriver)(nil)

// NoopDriver is a simple in-memory driver for dev runs and tests. Every
// dispatch succeeds and callbacks are validated by token lookup alone.
type NoopDriver struct {
	payments repository.PaymentRepository

	mu  sync.Mutex
	seq int64
}

func NewNoopDriver(payments repository.PaymentRepository) *NoopDriver {
	return &NoopDriver{payments: payments}
}

func (d *NoopDriver) ID() string   { return "noop" }
func (d *NoopDriver) Name() string { return "Noop" }
func (d *NoopDriver) IsCard() bool { return false }

func (d *NoopDriver) next() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return fmt.Sprintf("noop-%d", d.seq)
}

func (d *NoopDriver) Buy(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	return adapter.Response{"url": "https://example.test/pay/" + p.Token}, nil
}

func (d *NoopDriver) Subscribe(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (adapter.Response, error) {
	return adapter.Response{"url": "https://example.test/subscribe/" + p.Token}, nil
}

func (d *NoopDriver) ValidateCallback(ctx context.Context, req *adapter.CallbackRequest) (*model.Payment, error) {
	token := req.Params["reference"]
	if token == "" {
		return nil, nil
	}
	p, err := d.payments.FindByToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (d *NoopDriver) ProcessPayment(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	return adapter.Response{"ref_id": d.next()}, nil
}
