// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"creator-payments/internal/config"
	pg "creator-payments/internal/infra/db/postgres"
)

// Seeds a clean, predictable database state for manual end-to-end testing:
// two users (a seller with a price and a bundle, and a buyer), one priced
// post and one priced message.
func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("--- seeding ---")

	sellerID := uuid.NewString()
	buyerID := uuid.NewString()
	now := time.Now()

	stmts := []struct {
		sql  string
		args []interface{}
	}{
		{`INSERT INTO users (id, username, price, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`,
			[]interface{}{sellerID, "seller", int64(500), now}},
		{`INSERT INTO users (id, username, price, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`,
			[]interface{}{buyerID, "buyer", int64(0), now}},
		{`INSERT INTO bundles (id, user_id, months, discount, created_at, updated_at) VALUES ($1,$2,3,20,$3,$3)`,
			[]interface{}{uuid.NewString(), sellerID, now}},
		{`INSERT INTO posts (id, user_id, price, created_at) VALUES ($1,$2,$3,$4)`,
			[]interface{}{uuid.NewString(), sellerID, int64(150), now}},
		{`INSERT INTO messages (id, user_id, price, created_at) VALUES ($1,$2,$3,$4)`,
			[]interface{}{uuid.NewString(), sellerID, int64(75), now}},
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	log.Printf("seeded seller=%s buyer=%s", sellerID, buyerID)
}
