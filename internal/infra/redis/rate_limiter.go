package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter bounds purchase attempts per user with a fixed-window counter.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

func PurchaseKey(userID string) string {
	return fmt.Sprintf("rate_limit:%s:purchase", userID)
}
