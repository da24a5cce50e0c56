package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/repository"
)

var (
	_ repository.EntityCatalog  = (*catalogRepo)(nil)
	_ repository.UserRepository = (*userRepo)(nil)
)

// catalogRepo answers chargeable-entity lookups against the platform tables.
// The payment core only reads owner and price from them.
type catalogRepo struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) Find(ctx context.Context, kind model.EntityKind, id string) (*model.PricedEntity, error) {
	var q string
	switch kind {
	case model.EntityKindSub:
		// Subscriptions target a user; the user owns themselves.
		q = `SELECT id, id, price FROM users WHERE id=$1;`
	case model.EntityKindPost:
		q = `SELECT id, user_id, price FROM posts WHERE id=$1;`
	case model.EntityKindMessage:
		q = `SELECT id, user_id, price FROM messages WHERE id=$1;`
	default:
		return nil, domain.ErrInvalidArgument
	}

	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	e := &model.PricedEntity{}
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	q := `SELECT id, username, price, created_at, updated_at FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Price, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return u, nil
}

func (r *userRepo) UpdatePrice(ctx context.Context, tx repository.Tx, id string, price int64) error {
	const q = `UPDATE users SET price=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, price)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
