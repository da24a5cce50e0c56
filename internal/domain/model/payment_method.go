package model

import "time"

type PaymentMethodType string

const (
	PaymentMethodTypeCard PaymentMethodType = "card"
)

// PaymentMethod is a stored payment instrument. Info is whatever durable
// reference the card driver produced during tokenization; the core never
// inspects it.
type PaymentMethod struct {
	ID        string // UUID
	UserID    string // owner
	Type      PaymentMethodType
	Info      map[string]string // driver-opaque, serialized as JSONB
	Title     string
	Main      bool // at most one per owner; exactly one when the owner has any
	CreatedAt time.Time
	UpdatedAt time.Time
}
