//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"creator-payments/internal/domain"
	"creator-payments/internal/domain/model"
	"creator-payments/internal/domain/ports/adapter"
	"creator-payments/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// MockPaymentRepo is a small in-memory implementation used by unit tests.
type MockPaymentRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Payment
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Token == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) MarkComplete(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = model.PaymentStatusComplete
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListComplete(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.UserID == userID && p.Status == model.PaymentStatusComplete {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockBundleRepo keys bundles by id and enforces the (owner, months) upsert.
type MockBundleRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Bundle
}

func NewMockBundleRepo() *MockBundleRepo {
	return &MockBundleRepo{store: make(map[string]*model.Bundle)}
}

func (m *MockBundleRepo) Save(ctx context.Context, tx repository.Tx, b *model.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.store {
		if cur.UserID == b.UserID && cur.Months == b.Months {
			cur.Discount = b.Discount
			cur.UpdatedAt = b.UpdatedAt
			return nil
		}
	}
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *MockBundleRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBundleRepo) FindByOwner(ctx context.Context, tx repository.Tx, id, ownerID string) (*model.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok || b.UserID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBundleRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Bundle
	for _, b := range m.store {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockBundleRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// MockMethodRepo mirrors the SQL sweep semantics of the real repository.
type MockMethodRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentMethod
	order []string // insertion order, for PromoteAny
}

func NewMockMethodRepo() *MockMethodRepo {
	return &MockMethodRepo{store: make(map[string]*model.PaymentMethod)}
}

func (m *MockMethodRepo) Save(ctx context.Context, tx repository.Tx, pm *model.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[pm.ID]; !ok {
		m.order = append(m.order, pm.ID)
	}
	cp := *pm
	m.store[pm.ID] = &cp
	return nil
}

func (m *MockMethodRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pm, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pm
	return &cp, nil
}

func (m *MockMethodRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentMethod
	for _, id := range m.order {
		pm, ok := m.store[id]
		if ok && pm.UserID == userID {
			cp := *pm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockMethodRepo) SetMain(ctx context.Context, tx repository.Tx, ownerID, methodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.store {
		if pm.UserID == ownerID {
			pm.Main = pm.ID == methodID
		}
	}
	return nil
}

func (m *MockMethodRepo) HasMain(ctx context.Context, tx repository.Tx, ownerID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.store {
		if pm.UserID == ownerID && pm.Main {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMethodRepo) PromoteAny(ctx context.Context, tx repository.Tx, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		pm, ok := m.store[id]
		if ok && pm.UserID == ownerID {
			pm.Main = true
			return nil
		}
	}
	return nil
}

func (m *MockMethodRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// MockUserRepo doubles as the entity catalog for posts and messages.
type MockUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*model.User)}
}

func (m *MockUserRepo) Put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) UpdatePrice(ctx context.Context, tx repository.Tx, id string, price int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Price = price
	return nil
}

type MockCatalog struct {
	mu       sync.RWMutex
	entities map[model.EntityKind]map[string]*model.PricedEntity
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{entities: make(map[model.EntityKind]map[string]*model.PricedEntity)}
}

func (m *MockCatalog) Put(kind model.EntityKind, e *model.PricedEntity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entities[kind] == nil {
		m.entities[kind] = make(map[string]*model.PricedEntity)
	}
	cp := *e
	m.entities[kind][e.ID] = &cp
}

func (m *MockCatalog) Find(ctx context.Context, kind model.EntityKind, id string) (*model.PricedEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[kind][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// MockTxManager runs the callback without a real transaction.
type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// memLocker is a process-local locker with the redis locker's contract.
type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]string)} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		if _, busy := l.held[key]; !busy {
			token := key + "-token"
			l.held[key] = token
			l.mu.Unlock()
			return token, nil
		}
		l.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	return "", domain.ErrLockNotAcquired
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// hookLocker runs a one-shot callback just before a lock is acquired, letting
// a test squeeze a competing operation between an unlocked read and the
// critical section that follows it.
type hookLocker struct {
	*memLocker
	beforeLock func()
}

func (l *hookLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f := l.beforeLock; f != nil {
		l.beforeLock = nil
		f()
	}
	return l.memLocker.TryLock(ctx, key, ttl)
}

// MockDriver is a scriptable gateway driver.
type MockDriver struct {
	IDVal   string
	NameVal string
	Card    bool

	BuyFunc       func(ctx context.Context, p *model.Payment) (adapter.Response, error)
	SubscribeFunc func(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (adapter.Response, error)
	ValidateFunc  func(ctx context.Context, req *adapter.CallbackRequest) (*model.Payment, error)
	ProcessFunc   func(ctx context.Context, p *model.Payment) (adapter.Response, error)
	CardInfoFunc  func(ctx context.Context, input map[string]string, user *model.User) (map[string]string, error)

	mu           sync.Mutex
	BuyCalls     int
	SubCalls     int
	ProcessCalls int
}

func (d *MockDriver) ID() string   { return d.IDVal }
func (d *MockDriver) Name() string { return d.NameVal }
func (d *MockDriver) IsCard() bool { return d.Card }

func (d *MockDriver) Buy(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	d.mu.Lock()
	d.BuyCalls++
	d.mu.Unlock()
	if d.BuyFunc != nil {
		return d.BuyFunc(ctx, p)
	}
	return adapter.Response{"url": "https://example.test/pay/" + p.Token}, nil
}

func (d *MockDriver) Subscribe(ctx context.Context, p *model.Payment, target *model.User, bundle *model.Bundle) (adapter.Response, error) {
	d.mu.Lock()
	d.SubCalls++
	d.mu.Unlock()
	if d.SubscribeFunc != nil {
		return d.SubscribeFunc(ctx, p, target, bundle)
	}
	return adapter.Response{"url": "https://example.test/subscribe/" + p.Token}, nil
}

func (d *MockDriver) ValidateCallback(ctx context.Context, req *adapter.CallbackRequest) (*model.Payment, error) {
	if d.ValidateFunc != nil {
		return d.ValidateFunc(ctx, req)
	}
	return nil, nil
}

func (d *MockDriver) ProcessPayment(ctx context.Context, p *model.Payment) (adapter.Response, error) {
	d.mu.Lock()
	d.ProcessCalls++
	d.mu.Unlock()
	if d.ProcessFunc != nil {
		return d.ProcessFunc(ctx, p)
	}
	return adapter.Response{"ref_id": "ref-" + p.Token}, nil
}

func (d *MockDriver) ExtractCardInfo(ctx context.Context, input map[string]string, user *model.User) (map[string]string, error) {
	if d.CardInfoFunc != nil {
		return d.CardInfoFunc(ctx, input, user)
	}
	return map[string]string{"token": "card-" + user.ID}, nil
}
