package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"CoffeeStore-App/internal/domain/helper"
	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

// MaxSearchLimit 1回の検索で取得できる最大件数
const MaxSearchLimit = 50

// PlacesService 周辺のコーヒーショップ一覧（候補レコード）を提供するサービス
type PlacesService interface {
	SearchNearby(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error)
}

// PlacesOptions 検索のデフォルト値
type PlacesOptions struct {
	DefaultLatLong string
	DefaultLimit   int
	CacheTTL       time.Duration
}

type placesServiceImpl struct {
	places repository.PlacesProvider
	photos repository.PhotosProvider
	cache  repository.PlacesCacheRepository
	opts   PlacesOptions
}

// NewPlacesService PlacesServiceの新しいインスタンスを作成
// photos / cache は nil でもよい
func NewPlacesService(places repository.PlacesProvider, photos repository.PhotosProvider, cache repository.PlacesCacheRepository, opts PlacesOptions) PlacesService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 6
	}
	return &placesServiceImpl{
		places: places,
		photos: photos,
		cache:  cache,
		opts:   opts,
	}
}

// SearchNearby latLong が空の場合はデフォルト地点、limit が0の場合はデフォルト件数で検索する
func (s *placesServiceImpl) SearchNearby(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error) {
	if strings.TrimSpace(latLong) == "" {
		latLong = s.opts.DefaultLatLong
	}
	location, err := model.ParseLatLong(latLong)
	if err != nil {
		return nil, err
	}

	if limit == 0 {
		limit = s.opts.DefaultLimit
	}
	if limit < 0 || limit > MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit は1から%dの範囲で指定してください", model.ErrInvalidArgument, MaxSearchLimit)
	}

	cacheKey := fmt.Sprintf("%s_%d", helper.LocationKey(location), limit)
	if cached, ok := s.readCache(ctx, cacheKey); ok {
		helper.SortByDistance(cached, location)
		return cached, nil
	}

	var (
		stores    []model.CoffeeStore
		photoURLs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.places.SearchNearby(gctx, location, limit)
		if err != nil {
			return fmt.Errorf("周辺検索に失敗: %w", err)
		}
		stores = found
		return nil
	})
	if s.photos != nil {
		g.Go(func() error {
			urls, err := s.photos.ListPhotoURLs(gctx, limit)
			if err != nil {
				// 画像は装飾のみなのでプレースホルダーで続行
				slog.Warn("photo lookup failed, using placeholder", "error", err)
				return nil
			}
			photoURLs = urls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range stores {
		if stores[i].ImgURL == "" && i < len(photoURLs) {
			stores[i].ImgURL = photoURLs[i]
		}
		if stores[i].ImgURL == "" {
			stores[i].ImgURL = model.PlaceholderImageURL
		}
	}
	helper.AssignLocationKeys(stores)
	helper.SortByDistance(stores, location)

	s.writeCache(ctx, cacheKey, stores)
	return stores, nil
}

func (s *placesServiceImpl) readCache(ctx context.Context, key string) ([]model.CoffeeStore, bool) {
	if s.cache == nil {
		return nil, false
	}
	stores, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("search cache read failed", "key", key, "error", err)
		return nil, false
	}
	return stores, ok
}

func (s *placesServiceImpl) writeCache(ctx context.Context, key string, stores []model.CoffeeStore) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Save(ctx, key, stores, s.opts.CacheTTL); err != nil {
		slog.Warn("search cache write failed", "key", key, "error", err)
	}
}
