package adapter

import (
	"context"

	"creator-payments/internal/domain/model"
)

// Response is a driver's provider-specific payload (redirect URL, client
// secret, ...). The core passes it through to the caller without
// interpreting its shape.
type Response map[string]any

// CallbackRequest is the raw inbound gateway notification, flattened to the
// parts a driver needs to authenticate it.
type CallbackRequest struct {
	Params  map[string]string // query + form fields
	Headers map[string]string
}

// GatewayDriver is the hex port for one external payment provider.
//
// Buy covers single-shot purchases (post, message); Subscribe covers new
// subscriptions, which may require recurring-billing setup on the provider
// side. ValidateCallback authenticates an inbound notification and maps it to
// the payment it refers to, returning (nil, nil) when the callback is not
// recognized. ProcessPayment finalizes money movement for a validated
// payment.
type GatewayDriver interface {
	ID() string
	Name() string
	IsCard() bool

	Buy(ctx context.Context, p *model.Payment) (Response, error)
	Subscribe(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (Response, error)
	ValidateCallback(ctx context.Context, req *CallbackRequest) (*model.Payment, error)
	ProcessPayment(ctx context.Context, p *model.Payment) (Response, error)
}

// GatewayRegistry holds the drivers configured for this process. Built once
// at startup and immutable for the process lifetime.
type GatewayRegistry interface {
	// Enabled returns the configured drivers in selection order.
	Enabled() []GatewayDriver
	// Driver is an exact-match lookup; domain.ErrNotFound on a miss.
	Driver(id string) (GatewayDriver, error)
	// CCDriver returns the distinguished card driver, or nil.
	CCDriver() CardDriver
	// ProcessPayment finalizes money movement for a validated payment via the
	// driver recorded on the payment.
	ProcessPayment(ctx context.Context, p *model.Payment) (Response, error)
}

// CardDriver is implemented by the distinguished card-capable driver. It
// additionally turns raw onboarding input into a durable card reference,
// returning (nil, nil) when the card is declined or invalid.
type CardDriver interface {
	GatewayDriver
	ExtractCardInfo(ctx context.Context, input map[string]string, user *model.User) (map[string]string, error)
}
