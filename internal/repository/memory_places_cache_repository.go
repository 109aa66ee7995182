package repository

import (
	"context"
	"sync"
	"time"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

type memoryCacheEntry struct {
	stores    []model.CoffeeStore
	expiresAt time.Time
}

// MemoryPlacesCacheRepository プロセス内の検索結果キャッシュ（Firestore未設定時に使用）
type MemoryPlacesCacheRepository struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
}

func NewMemoryPlacesCacheRepository() *MemoryPlacesCacheRepository {
	return &MemoryPlacesCacheRepository{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

var _ repository.PlacesCacheRepository = (*MemoryPlacesCacheRepository)(nil)

func (r *MemoryPlacesCacheRepository) Get(ctx context.Context, key string) ([]model.CoffeeStore, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.entries, key)
		return nil, false, nil
	}

	stores := make([]model.CoffeeStore, len(entry.stores))
	copy(stores, entry.stores)
	return stores, true, nil
}

func (r *MemoryPlacesCacheRepository) Save(ctx context.Context, key string, stores []model.CoffeeStore, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make([]model.CoffeeStore, len(stores))
	copy(saved, stores)
	r.entries[key] = memoryCacheEntry{stores: saved, expiresAt: r.now().Add(ttl)}
	return nil
}

// SetClock テスト用に現在時刻の取得関数を差し替える
func (r *MemoryPlacesCacheRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}
