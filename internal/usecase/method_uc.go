// File: internal/usecase/method_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/domain/ports/repository"
	"creator-payments/internal/infra/metrics"
)

// Compile-time check
var _ MethodUseCase = (*methodUC)(nil)

// Locker serializes read-modify-write sequences per owner. Backed by redis
// SetNX in production, in-memory in tests.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type MethodUseCase interface {
	List(ctx context.Context, userID string) ([]*model.PaymentMethod, error)
	// SetMain marks one method as the owner's main and every other one as
	// not-main, repairing any prior inconsistency in the same sweep.
	SetMain(ctx context.Context, methodID, actingUserID string) ([]*model.PaymentMethod, error)
	// Create tokenizes raw onboarding input through the card driver and
	// stores the resulting method. The first stored method becomes main.
	Create(ctx context.Context, userID string, input map[string]string, title string) (*model.PaymentMethod, error)
	// Delete removes a method; deleting the main method promotes one
	// remaining method so the owner never has methods without a main.
	Delete(ctx context.Context, methodID, actingUserID string) ([]*model.PaymentMethod, error)
}

type methodUC struct {
	methods  repository.PaymentMethodRepository
	users    repository.UserRepository
	registry adapter.GatewayRegistry
	tm       repository.TransactionManager
	locker   Locker
	lockTTL  time.Duration
	log      *zerolog.Logger
}

func NewMethodUseCase(methods repository.PaymentMethodRepository, users repository.UserRepository, registry adapter.GatewayRegistry, tm repository.TransactionManager, locker Locker, lockTTL time.Duration, logger *zerolog.Logger) *methodUC {
	return &methodUC{methods: methods, users: users, registry: registry, tm: tm, locker: locker, lockTTL: lockTTL, log: logger}
}

func (u *methodUC) List(ctx context.Context, userID string) ([]*model.PaymentMethod, error) {
	return u.methods.ListByUser(ctx, nil, userID)
}

func (u *methodUC) SetMain(ctx context.Context, methodID, actingUserID string) ([]*model.PaymentMethod, error) {
	m, err := u.methods.FindByID(ctx, nil, methodID)
	if err != nil {
		return nil, err
	}
	if m.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}

	unlock, err := u.lockOwner(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// The method may be gone by now: a delete can run between the
		// ownership check and lock acquisition, and sweeping with a missing
		// id would demote every method the owner has.
		fresh, err := u.methods.FindByID(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		return u.methods.SetMain(ctx, tx, fresh.UserID, fresh.ID)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMethodOp("set_main")
	return u.methods.ListByUser(ctx, nil, m.UserID)
}

func (u *methodUC) Create(ctx context.Context, userID string, input map[string]string, title string) (*model.PaymentMethod, error) {
	driver := u.registry.CCDriver()
	if driver == nil {
		return nil, domain.ErrCardDriverNotSet
	}
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	info, err := driver.ExtractCardInfo(ctx, input, user)
	if err != nil {
		return nil, fmt.Errorf("card info: %w", err)
	}
	if info == nil {
		return nil, domain.ErrUnprocessable
	}

	unlock, err := u.lockOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	m := &model.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      model.PaymentMethodTypeCard,
		Info:      info,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		hasMain, err := u.methods.HasMain(ctx, tx, userID)
		if err != nil {
			return err
		}
		m.Main = !hasMain
		return u.methods.Save(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMethodOp("create")
	return m, nil
}

func (u *methodUC) Delete(ctx context.Context, methodID, actingUserID string) ([]*model.PaymentMethod, error) {
	m, err := u.methods.FindByID(ctx, nil, methodID)
	if err != nil {
		return nil, err
	}
	if m.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}

	unlock, err := u.lockOwner(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.methods.Delete(ctx, tx, m.ID); err != nil {
			return err
		}
		hasMain, err := u.methods.HasMain(ctx, tx, m.UserID)
		if err != nil {
			return err
		}
		if !hasMain {
			return u.methods.PromoteAny(ctx, tx, m.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMethodOp("delete")
	return u.methods.ListByUser(ctx, nil, m.UserID)
}

func (u *methodUC) lockOwner(ctx context.Context, ownerID string) (func(), error) {
	key := "paymethods:" + ownerID
	token, err := u.locker.TryLock(ctx, key, u.lockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := u.locker.Unlock(ctx, key, token); err != nil {
			u.log.Warn().Str("key", key).Err(err).Msg("unlock failed")
		}
	}, nil
}
