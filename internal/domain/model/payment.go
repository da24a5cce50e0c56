package model

import "time"

type PaymentType string

const (
	PaymentTypeSubscriptionNew PaymentType = "subscription_new" // subscribe to another user
	PaymentTypePost            PaymentType = "post"             // unlock a single post
	PaymentTypeMessage         PaymentType = "message"          // unlock a single direct message
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"  // record created; awaiting gateway confirmation
	PaymentStatusComplete PaymentStatus = "complete" // gateway confirmed; terminal
)

// Info keys stored per payment type. A payment's Info carries exactly the
// reference relevant to its type, plus bundle_id for discounted subscriptions.
const (
	InfoKeySub     = "sub_id"
	InfoKeyPost    = "post_id"
	InfoKeyMessage = "message_id"
	InfoKeyBundle  = "bundle_id"
)

// Payment records one purchase transaction. Amount and recipient are fixed at
// creation time and never recomputed; the record is never deleted.
type Payment struct {
	ID        string            // UUID
	UserID    string            // payer
	ToID      string            // recipient (seller)
	Type      PaymentType
	Info      map[string]string // type-specific reference ids, serialized as JSONB
	Amount    int64             // minor currency units
	Gateway   string            // driver id the purchase was dispatched to
	Token     string            // opaque token handed to the gateway, matched on callback
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) Complete() bool { return p.Status == PaymentStatusComplete }
