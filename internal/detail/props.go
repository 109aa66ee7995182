package detail

import (
	"context"
	"fmt"

	"CoffeeStore-App/internal/domain/model"
)

// StoresLister デフォルト地点の一覧を取得する
type StoresLister interface {
	GetCoffeeStoresByLocation(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error)
}

// StaticPaths 事前生成する詳細ページのID一覧（デフォルト地点の検索結果）
func StaticPaths(ctx context.Context, lister StoresLister) ([]string, error) {
	stores, err := lister.GetCoffeeStoresByLocation(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("事前生成パスの取得に失敗: %w", err)
	}

	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// StaticProps id に対応するビルド時プロパティ。見つからなければ空のストアを返す
func StaticProps(ctx context.Context, lister StoresLister, id string) (*model.CoffeeStore, error) {
	stores, err := lister.GetCoffeeStoresByLocation(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("ビルド時プロパティの取得に失敗: %w", err)
	}

	for _, s := range stores {
		if s.ID == id {
			store := s
			return &store, nil
		}
	}
	return &model.CoffeeStore{}, nil
}
