package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoffeeStore-App/internal/domain/model"
)

// racyStoresRepository 読み取りと書き込みが別操作のレコードストアを模したフェイク
type racyStoresRepository struct {
	mu          sync.Mutex
	stores      map[string]model.CoffeeStore
	findCalls   int
	createCalls int // 成功した作成の回数
	writeCalls  int
	findErr     error
	// createConflict Create時に別プロセスが先に作成した状況を再現する
	createConflict bool
}

func newRacyStoresRepository() *racyStoresRepository {
	return &racyStoresRepository{stores: make(map[string]model.CoffeeStore)}
}

func (r *racyStoresRepository) FindByID(ctx context.Context, id string) (*model.CoffeeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	store, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return &store, nil
}

func (r *racyStoresRepository) FindByLocationKey(ctx context.Context, key string) ([]model.CoffeeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stores := []model.CoffeeStore{}
	for _, s := range r.stores {
		if s.LocationKey == key {
			stores = append(stores, s)
		}
	}
	return stores, nil
}

func (r *racyStoresRepository) Create(ctx context.Context, store *model.CoffeeStore) (*model.CoffeeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createConflict {
		r.stores[store.ID] = model.CoffeeStore{ID: store.ID, Name: "winner", Voting: 7}
		return nil, fmt.Errorf("%w: duplicate", model.ErrConflict)
	}
	if _, ok := r.stores[store.ID]; ok {
		return nil, fmt.Errorf("%w: duplicate", model.ErrConflict)
	}
	r.createCalls++
	r.stores[store.ID] = *store
	created := *store
	return &created, nil
}

func (r *racyStoresRepository) IncrementVotes(ctx context.Context, id string) (*model.CoffeeStore, error) {
	r.mu.Lock()
	store, ok := r.stores[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}

	// 読み取りと書き込みの間に他の更新が割り込める
	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeCalls++
	store.Voting++
	r.stores[id] = store
	return &store, nil
}

func (r *racyStoresRepository) AtomicIncrement() bool { return false }

func (r *racyStoresRepository) HealthCheck(ctx context.Context) error { return nil }

func (r *racyStoresRepository) get(id string) model.CoffeeStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores[id]
}

type fakePlacesProvider struct {
	mu     sync.Mutex
	stores []model.CoffeeStore
	err    error
	calls  int
	last   model.LatLng
	limit  int
}

func (p *fakePlacesProvider) SearchNearby(ctx context.Context, location model.LatLng, limit int) ([]model.CoffeeStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = location
	p.limit = limit
	if p.err != nil {
		return nil, p.err
	}
	out := make([]model.CoffeeStore, len(p.stores))
	copy(out, p.stores)
	return out, nil
}

type fakePhotosProvider struct {
	urls []string
	err  error
}

func (p *fakePhotosProvider) ListPhotoURLs(ctx context.Context, limit int) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.urls, nil
}
