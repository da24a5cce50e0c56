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

var _ repository.PaymentMethodRepository = (*methodRepo)(nil)

type methodRepo struct{ pool *pgxpool.Pool }

func NewMethodRepo(pool *pgxpool.Pool) *methodRepo {
	return &methodRepo{pool: pool}
}

const methodColumns = `id, user_id, type, info, title, main, created_at, updated_at`

func (r *methodRepo) Save(ctx context.Context, tx repository.Tx, m *model.PaymentMethod) error {
	const q = `
INSERT INTO payment_methods (id, user_id, type, info, title, main, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  title=$5, main=$6, updated_at=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.UserID, m.Type, m.Info, m.Title, m.Main, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *methodRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentMethod, error) {
	q := `SELECT ` + methodColumns + ` FROM payment_methods WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMethod(row)
}

func (r *methodRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentMethod, error) {
	q := `SELECT ` + methodColumns + ` FROM payment_methods WHERE user_id=$1 ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMain sweeps every method of the owner in one statement, so the single
// main invariant holds afterwards regardless of what the rows looked like
// before.
func (r *methodRepo) SetMain(ctx context.Context, tx repository.Tx, ownerID, methodID string) error {
	const q = `UPDATE payment_methods SET main = (id = $2), updated_at=NOW() WHERE user_id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, ownerID, methodID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *methodRepo) HasMain(ctx context.Context, tx repository.Tx, ownerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM payment_methods WHERE user_id=$1 AND main);`
	row, err := pickRow(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		return false, err
	}
	var has bool
	if err := row.Scan(&has); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return has, nil
}

func (r *methodRepo) PromoteAny(ctx context.Context, tx repository.Tx, ownerID string) error {
	const q = `
UPDATE payment_methods SET main=true, updated_at=NOW()
WHERE id = (SELECT id FROM payment_methods WHERE user_id=$1 ORDER BY created_at LIMIT 1);`
	_, err := execSQL(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *methodRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM payment_methods WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanMethod(row pgx.Row) (*model.PaymentMethod, error) {
	m := &model.PaymentMethod{}
	if err := row.Scan(&m.ID, &m.UserID, &m.Type, &m.Info, &m.Title, &m.Main, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
