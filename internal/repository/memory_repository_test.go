package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoffeeStore-App/internal/domain/model"
)

func TestMemoryCoffeeStoresRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCoffeeStoresRepository()

	found, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = repo.Create(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X", LocationKey: "k"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &model.CoffeeStore{ID: "s1", Name: "Cafe X"})
	assert.ErrorIs(t, err, model.ErrConflict)

	updated, err := repo.IncrementVotes(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Voting)

	_, err = repo.IncrementVotes(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	byKey, err := repo.FindByLocationKey(ctx, "k")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, 1, byKey[0].Voting)
}

func TestMemoryPlacesCacheRepository(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryPlacesCacheRepository()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Save(ctx, "k", []model.CoffeeStore{{ID: "a"}}, 10*time.Minute))

	stores, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", stores[0].ID)

	t.Run("期限切れは未ヒット", func(t *testing.T) {
		now = now.Add(10 * time.Minute)
		_, ok, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCoffeeStoreRow(t *testing.T) {
	data := []byte(`[{"id":"s1","name":"Cafe X","address":"","neighbourhood":"Downtown","img_url":"u","voting":3,"location_key":"k","latitude":null,"longitude":null}]`)
	stores, err := decodeRows(data)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, 3, stores[0].Voting)
	assert.Equal(t, "u", stores[0].ImgURL)
	assert.Nil(t, stores[0].Latitude)

	_, err = decodeRows([]byte(`{"id":"s1"}`))
	assert.ErrorIs(t, err, model.ErrDataFormat)

	_, err = decodeRows([]byte(`[{"id":"s1","name":"x"}]`))
	assert.ErrorIs(t, err, model.ErrDataFormat, "voting が欠けている行は不正")

	assert.True(t, isDuplicateKey(errors.New(`(23505) duplicate key value violates unique constraint "coffee_stores_pkey"`)))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
