package model

import "time"

// User carries only what the payment core needs: identity and the base
// subscription price the seller charges per month, in minor units.
type User struct {
	ID        string // UUID
	Username  string
	Price     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntityKind names a chargeable entity for catalog lookups.
type EntityKind string

const (
	EntityKindSub     EntityKind = "subscription" // target is a user; price is their subscription price
	EntityKindPost    EntityKind = "post"
	EntityKindMessage EntityKind = "message"
)

// PricedEntity is the catalog's answer for a chargeable entity: who gets paid
// and how much the entity costs.
type PricedEntity struct {
	ID      string
	OwnerID string
	Price   int64
}
