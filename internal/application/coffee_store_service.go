package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"CoffeeStore-App/internal/domain/helper"
	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/domain/repository"
)

// CoffeeStoreService 永続化済みコーヒーショップに関するビジネスロジックを提供するサービス
type CoffeeStoreService interface {
	// Upsert IDで検索し、存在しなければ作成する。既存レコードは上書きしない
	Upsert(ctx context.Context, candidate *model.CoffeeStore) (*model.CoffeeStore, error)

	// GetByID 0件または1件のリストを返す
	GetByID(ctx context.Context, id string) ([]model.CoffeeStore, error)

	// GetByLocation 指定地点と同じロケーションキーを持つ永続化済みのストアを返す
	GetByLocation(ctx context.Context, latLong string) ([]model.CoffeeStore, error)
}

// coffeeStoreServiceImpl CoffeeStoreServiceの実装
type coffeeStoreServiceImpl struct {
	storesRepo repository.CoffeeStoresRepository
	inflight   singleflight.Group
}

// NewCoffeeStoreService CoffeeStoreServiceの新しいインスタンスを作成
func NewCoffeeStoreService(storesRepo repository.CoffeeStoresRepository) CoffeeStoreService {
	return &coffeeStoreServiceImpl{
		storesRepo: storesRepo,
	}
}

// Upsert 同じIDの同時呼び出しは1回のストア操作にまとめる
func (s *coffeeStoreServiceImpl) Upsert(ctx context.Context, candidate *model.CoffeeStore) (*model.CoffeeStore, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	v, err, _ := s.inflight.Do(candidate.ID, func() (interface{}, error) {
		return s.upsert(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	store := *v.(*model.CoffeeStore)
	return &store, nil
}

func (s *coffeeStoreServiceImpl) upsert(ctx context.Context, candidate *model.CoffeeStore) (*model.CoffeeStore, error) {
	existing, err := s.storesRepo.FindByID(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("コーヒーショップの検索失敗: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	record := candidate.WithDefaults()
	if record.LocationKey == "" {
		if ll, ok := record.ToLatLng(); ok {
			record.LocationKey = helper.LocationKey(ll)
		}
	}

	created, err := s.storesRepo.Create(ctx, &record)
	if errors.Is(err, model.ErrConflict) {
		// 別プロセスが先に作成した
		existing, findErr := s.storesRepo.FindByID(ctx, candidate.ID)
		if findErr != nil {
			return nil, fmt.Errorf("コーヒーショップの再検索失敗: %w", findErr)
		}
		if existing == nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("コーヒーショップの作成失敗: %w", err)
	}

	slog.Info("coffee store created", "id", created.ID, "name", created.Name, "location_key", created.LocationKey)
	return created, nil
}

// GetByID IDでコーヒーショップを取得
func (s *coffeeStoreServiceImpl) GetByID(ctx context.Context, id string) ([]model.CoffeeStore, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id は必須です", model.ErrInvalidArgument)
	}

	store, err := s.storesRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コーヒーショップの取得失敗: %w", err)
	}
	if store == nil {
		return []model.CoffeeStore{}, nil
	}
	return []model.CoffeeStore{*store}, nil
}

// GetByLocation ロケーションキーで永続化済みのコーヒーショップを取得
func (s *coffeeStoreServiceImpl) GetByLocation(ctx context.Context, latLong string) ([]model.CoffeeStore, error) {
	location, err := model.ParseLatLong(latLong)
	if err != nil {
		return nil, err
	}

	key := helper.LocationKey(location)
	stores, err := s.storesRepo.FindByLocationKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("エリア %s のコーヒーショップ取得失敗: %w", key, err)
	}
	return stores, nil
}

// validateCandidate 候補レコードのバリデーション
func validateCandidate(candidate *model.CoffeeStore) error {
	if candidate == nil || strings.TrimSpace(candidate.ID) == "" {
		return fmt.Errorf("%w: id は必須です", model.ErrInvalidArgument)
	}
	if strings.TrimSpace(candidate.Name) == "" {
		return fmt.Errorf("%w: name は必須です", model.ErrInvalidArgument)
	}
	return nil
}
