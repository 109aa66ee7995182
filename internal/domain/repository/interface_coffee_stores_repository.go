package repository

import (
	"context"

	"CoffeeStore-App/internal/domain/model"
)

// CoffeeStoresRepository 外部レコードストアに対するCRUD
// 実装はローカルキャッシュを持たず、すべての操作でストアにアクセスする
type CoffeeStoresRepository interface {
	// FindByID 該当なしの場合は (nil, nil) を返す
	FindByID(ctx context.Context, id string) (*model.CoffeeStore, error)
	FindByLocationKey(ctx context.Context, key string) ([]model.CoffeeStore, error)
	// Create 同じIDが既に存在する場合は model.ErrConflict を返す
	Create(ctx context.Context, store *model.CoffeeStore) (*model.CoffeeStore, error)
	// IncrementVotes 存在しない場合は model.ErrNotFound を返す
	IncrementVotes(ctx context.Context, id string) (*model.CoffeeStore, error)
	// AtomicIncrement IncrementVotes がストア側で単一の原子的操作として実行されるか
	AtomicIncrement() bool
	HealthCheck(ctx context.Context) error
}
