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

var _ repository.BundleRepository = (*bundleRepo)(nil)

type bundleRepo struct{ pool *pgxpool.Pool }

func NewBundleRepo(pool *pgxpool.Pool) *bundleRepo {
	return &bundleRepo{pool: pool}
}

const bundleColumns = `id, user_id, months, discount, created_at, updated_at`

// Save upserts on the (user_id, months) unique key so a second tier for the
// same duration updates the discount in place.
func (r *bundleRepo) Save(ctx context.Context, tx repository.Tx, b *model.Bundle) error {
	const q = `
INSERT INTO bundles (id, user_id, months, discount, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (user_id, months) DO UPDATE SET
  discount=$4, updated_at=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, b.ID, b.UserID, b.Months, b.Discount, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *bundleRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Bundle, error) {
	q := `SELECT ` + bundleColumns + ` FROM bundles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanBundle(row)
}

func (r *bundleRepo) FindByOwner(ctx context.Context, tx repository.Tx, id, ownerID string) (*model.Bundle, error) {
	q := `SELECT ` + bundleColumns + ` FROM bundles WHERE id=$1 AND user_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, id, ownerID)
	if err != nil {
		return nil, err
	}
	return scanBundle(row)
}

func (r *bundleRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Bundle, error) {
	q := `SELECT ` + bundleColumns + ` FROM bundles WHERE user_id=$1 ORDER BY months;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Bundle
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bundleRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM bundles WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanBundle(row pgx.Row) (*model.Bundle, error) {
	b := &model.Bundle{}
	if err := row.Scan(&b.ID, &b.UserID, &b.Months, &b.Discount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return b, nil
}
