package model

import "time"

// Bundle is a seller-defined multi-month discount tier. At most one bundle
// exists per (owner, months) pair.
type Bundle struct {
	ID        string // UUID
	UserID    string // owner (seller)
	Months    int    // 2..12
	Discount  int    // percent, 0..configured cap
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Price returns the discounted subscription price for a seller whose base
// price is given in minor units. Computed on read, never stored.
func (b *Bundle) Price(base int64) int64 {
	return base * int64(100-b.Discount) / 100
}
