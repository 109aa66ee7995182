package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoffeeStore-App/internal/domain/helper"
	"CoffeeStore-App/internal/domain/model"
)

func TestCoffeeStoreService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("新規作成時は投票数0とデフォルト値で保存される", func(t *testing.T) {
		repo := newRacyStoresRepository()
		service := NewCoffeeStoreService(repo)

		store, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X", Voting: 5, Neighbourhood: "Downtown"})
		require.NoError(t, err)

		assert.Equal(t, 0, store.Voting)
		assert.Equal(t, "Downtown", store.Neighbourhood)
		assert.Equal(t, "", store.Address)
		assert.Equal(t, model.PlaceholderImageURL, store.ImgURL)
		assert.Equal(t, 0, repo.get("s1").Voting)
	})

	t.Run("既存レコードは上書きしない", func(t *testing.T) {
		repo := newRacyStoresRepository()
		repo.stores["s1"] = model.CoffeeStore{ID: "s1", Name: "Original", Voting: 3, ImgURL: "u"}
		service := NewCoffeeStoreService(repo)

		store, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Renamed"})
		require.NoError(t, err)

		assert.Equal(t, "Original", store.Name)
		assert.Equal(t, 3, store.Voting)
		assert.Equal(t, 0, repo.createCalls)
	})

	t.Run("2回呼んでもレコードは1件", func(t *testing.T) {
		repo := newRacyStoresRepository()
		service := NewCoffeeStoreService(repo)

		first, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
		require.NoError(t, err)
		second, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, repo.createCalls)
		assert.Len(t, repo.stores, 1)
	})

	t.Run("同時呼び出しでも作成は1回", func(t *testing.T) {
		repo := newRacyStoresRepository()
		service := NewCoffeeStoreService(repo)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				store, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
				assert.NoError(t, err)
				assert.Equal(t, "s1", store.ID)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, repo.createCalls)
	})

	t.Run("作成競合時は既存レコードを返す", func(t *testing.T) {
		repo := newRacyStoresRepository()
		repo.createConflict = true
		service := NewCoffeeStoreService(repo)

		store, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
		require.NoError(t, err)
		assert.Equal(t, "winner", store.Name)
		assert.Equal(t, 7, store.Voting)
	})

	t.Run("座標からロケーションキーを付与する", func(t *testing.T) {
		repo := newRacyStoresRepository()
		service := NewCoffeeStoreService(repo)
		lat, lng := 43.6527, -79.3955

		store, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X", Latitude: &lat, Longitude: &lng})
		require.NoError(t, err)
		assert.Equal(t, helper.LocationKey(model.LatLng{Lat: lat, Lng: lng}), store.LocationKey)
	})

	t.Run("必須項目の欠落", func(t *testing.T) {
		service := NewCoffeeStoreService(newRacyStoresRepository())

		_, err := service.Upsert(ctx, &model.CoffeeStore{Name: "Cafe X"})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)

		_, err = service.Upsert(ctx, &model.CoffeeStore{ID: "s1"})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("ストアの障害はそのまま伝播する", func(t *testing.T) {
		repo := newRacyStoresRepository()
		repo.findErr = model.ErrRemoteUnavailable
		service := NewCoffeeStoreService(repo)

		_, err := service.Upsert(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
		assert.ErrorIs(t, err, model.ErrRemoteUnavailable)
		assert.Equal(t, 0, repo.createCalls)
	})
}

func TestCoffeeStoreService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newRacyStoresRepository()
	repo.stores["s1"] = model.CoffeeStore{ID: "s1", Name: "Cafe X", Voting: 2}
	service := NewCoffeeStoreService(repo)

	stores, err := service.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, 2, stores[0].Voting)

	empty, err := service.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = service.GetByID(ctx, " ")
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestCoffeeStoreService_GetByLocation(t *testing.T) {
	ctx := context.Background()
	origin := model.LatLng{Lat: 43.6527, Lng: -79.3955}
	repo := newRacyStoresRepository()
	repo.stores["a"] = model.CoffeeStore{ID: "a", LocationKey: helper.LocationKey(origin)}
	repo.stores["b"] = model.CoffeeStore{ID: "b", LocationKey: "14-0-0"}
	service := NewCoffeeStoreService(repo)

	stores, err := service.GetByLocation(ctx, origin.String())
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "a", stores[0].ID)

	_, err = service.GetByLocation(ctx, "nowhere")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
