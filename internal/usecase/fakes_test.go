package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
)

type fakeCatalog struct {
	products map[string]*domain.Product
	err      error
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	cp := *p
	return &cp, nil
}

type fakeRepo struct {
	orders    map[string]*domain.Order
	created   []*domain.Order
	createErr error
	touched   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeRepo) CreateOrderGraph(_ context.Context, o *domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, o)
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status, notes string) (bool, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.History = append([]domain.HistoryEntry{{
		OrderID:   id,
		Status:    to,
		Notes:     notes,
		CreatedAt: time.Now(),
	}}, o.History...)
	return true, nil
}

func (f *fakeRepo) Touch(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, id string, ps domain.PaymentStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = ps
	return nil
}

type fakeNotifier struct {
	confirmations []string
	statusUpdates []string
	err           error
}

func (f *fakeNotifier) SendOrderConfirmation(_ context.Context, o *domain.Order) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, o.ID)
	return nil
}

func (f *fakeNotifier) SendStatusUpdate(_ context.Context, o *domain.Order, prev domain.Status) error {
	if f.err != nil {
		return f.err
	}
	f.statusUpdates = append(f.statusUpdates, o.ID+":"+string(prev)+"->"+string(o.Status))
	return nil
}

type fakeIdem struct {
	locks map[string]bool
	saved map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, saved: map[string]string{}}
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdem) Unlock(_ context.Context, scope, key string) error {
	delete(f.locks, scope+":"+key)
	return nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	f.saved[scope+":"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := f.saved[scope+":"+key]
	return v, ok, nil
}

type fakeCache struct {
	statuses map[string]string
	err      error
}

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]string{}} }

func (f *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	if f.err != nil {
		return f.err
	}
	f.statuses[orderID] = status
	return nil
}

func (f *fakeCache) GetStatus(_ context.Context, orderID string) (string, error) {
	return f.statuses[orderID], nil
}
