package session

import (
	"context"
	"fmt"
	"sync"

	"CoffeeStore-App/internal/domain/helper"
	"CoffeeStore-App/internal/domain/model"
)

// StoresFetcher 周辺のコーヒーショップ一覧を取得する
type StoresFetcher interface {
	GetCoffeeStoresByLocation(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error)
}

// StoreCache 取得済みの候補レコードをIDで引けるようにしたキャッシュ
// 一覧ページで一括取得し、詳細ページから読み出す。アップサートや投票は行わない
type StoreCache struct {
	mu        sync.RWMutex
	stores    []model.CoffeeStore
	byID      map[string]int
	scope     string
	populated bool
}

func NewStoreCache() *StoreCache {
	return &StoreCache{byID: make(map[string]int)}
}

// Populate 一覧を一括取得してキャッシュする
// 同じスコープ（ロケーションキー）で取得済みの場合は何もしない
func (c *StoreCache) Populate(ctx context.Context, fetcher StoresFetcher, latLong string, limit int) error {
	scope := scopeOf(latLong)

	c.mu.RLock()
	done := c.populated && c.scope == scope
	c.mu.RUnlock()
	if done {
		return nil
	}

	stores, err := fetcher.GetCoffeeStoresByLocation(ctx, latLong, limit)
	if err != nil {
		return fmt.Errorf("コーヒーショップ一覧の取得に失敗: %w", err)
	}

	c.Set(scope, stores)
	return nil
}

// Set キャッシュの内容を置き換える
func (c *StoreCache) Set(scope string, stores []model.CoffeeStore) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stores = make([]model.CoffeeStore, len(stores))
	copy(c.stores, stores)
	c.byID = make(map[string]int, len(stores))
	for i, s := range c.stores {
		if _, dup := c.byID[s.ID]; !dup {
			c.byID[s.ID] = i
		}
	}
	c.scope = scope
	c.populated = true
}

// Lookup IDでコーヒーショップを探す
func (c *StoreCache) Lookup(id string) (model.CoffeeStore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return model.CoffeeStore{}, false
	}
	return c.stores[i], true
}

// Stores キャッシュされている一覧のコピー
func (c *StoreCache) Stores() []model.CoffeeStore {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.CoffeeStore, len(c.stores))
	copy(out, c.stores)
	return out
}

// Len キャッシュされている件数
func (c *StoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores)
}

// Populated 一括取得済みかどうか
func (c *StoreCache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Clear キャッシュを空にする
func (c *StoreCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stores = nil
	c.byID = make(map[string]int)
	c.scope = ""
	c.populated = false
}

// scopeOf latLong からキャッシュのスコープを決める（解析できない場合はそのまま）
func scopeOf(latLong string) string {
	if latLong == "" {
		return ""
	}
	ll, err := model.ParseLatLong(latLong)
	if err != nil {
		return latLong
	}
	return helper.LocationKey(ll)
}
