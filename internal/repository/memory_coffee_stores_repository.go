package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

// MemoryCoffeeStoresRepository プロセス内のマップを使うレコードストア（ローカル開発用）
type MemoryCoffeeStoresRepository struct {
	mu     sync.RWMutex
	stores map[string]model.CoffeeStore
}

func NewMemoryCoffeeStoresRepository() repository.CoffeeStoresRepository {
	return &MemoryCoffeeStoresRepository{
		stores: make(map[string]model.CoffeeStore),
	}
}

func (r *MemoryCoffeeStoresRepository) FindByID(ctx context.Context, id string) (*model.CoffeeStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return &store, nil
}

func (r *MemoryCoffeeStoresRepository) FindByLocationKey(ctx context.Context, key string) ([]model.CoffeeStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := []model.CoffeeStore{}
	for _, store := range r.stores {
		if store.LocationKey == key {
			stores = append(stores, store)
		}
	}
	sort.Slice(stores, func(i, j int) bool {
		if stores[i].Voting != stores[j].Voting {
			return stores[i].Voting > stores[j].Voting
		}
		return stores[i].ID < stores[j].ID
	})
	return stores, nil
}

func (r *MemoryCoffeeStoresRepository) Create(ctx context.Context, store *model.CoffeeStore) (*model.CoffeeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[store.ID]; exists {
		return nil, fmt.Errorf("%w: コーヒーショップ %s は既に存在します", model.ErrConflict, store.ID)
	}
	r.stores[store.ID] = *store

	created := *store
	return &created, nil
}

func (r *MemoryCoffeeStoresRepository) IncrementVotes(ctx context.Context, id string) (*model.CoffeeStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: コーヒーショップ %s", model.ErrNotFound, id)
	}
	store.Voting++
	r.stores[id] = store
	return &store, nil
}

func (r *MemoryCoffeeStoresRepository) AtomicIncrement() bool {
	return true
}

func (r *MemoryCoffeeStoresRepository) HealthCheck(ctx context.Context) error {
	return nil
}
