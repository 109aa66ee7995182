package repository

import (
	"context"
	"time"

	"CoffeeStore-App/internal/domain/model"
)

// PlacesProvider 外部の位置検索APIから候補レコードを取得する
type PlacesProvider interface {
	SearchNearby(ctx context.Context, location model.LatLng, limit int) ([]model.CoffeeStore, error)
}

// PhotosProvider コーヒーショップ用の画像URLを取得する
type PhotosProvider interface {
	ListPhotoURLs(ctx context.Context, limit int) ([]string, error)
}

// PlacesCacheRepository 位置検索結果のTTL付きキャッシュ
type PlacesCacheRepository interface {
	// Get キャッシュなし・期限切れの場合は (nil, false, nil)
	Get(ctx context.Context, key string) ([]model.CoffeeStore, bool, error)
	Save(ctx context.Context, key string, stores []model.CoffeeStore, ttl time.Duration) error
}
