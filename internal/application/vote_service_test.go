package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoffeeStore-App/internal/domain/model"
)

func TestVoteService_Upvote(t *testing.T) {
	ctx := context.Background()

	t.Run("投票数が1増える", func(t *testing.T) {
		repo := newRacyStoresRepository()
		repo.stores["s1"] = model.CoffeeStore{ID: "s1", Name: "Cafe X", Voting: 4}
		service := NewVoteService(repo)

		store, err := service.Upvote(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 5, store.Voting)
		assert.Equal(t, 5, repo.get("s1").Voting)
	})

	t.Run("存在しないIDは書き込みを行わない", func(t *testing.T) {
		repo := newRacyStoresRepository()
		service := NewVoteService(repo)

		_, err := service.Upvote(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Equal(t, 0, repo.writeCalls)
		assert.Empty(t, repo.stores)
	})

	t.Run("空のIDは不正な引数", func(t *testing.T) {
		service := NewVoteService(newRacyStoresRepository())
		_, err := service.Upvote(ctx, "")
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("原子的でないストアでも同時投票を失わない", func(t *testing.T) {
		repo := newRacyStoresRepository()
		repo.stores["s1"] = model.CoffeeStore{ID: "s1", Name: "Cafe X", Voting: 0}
		service := NewVoteService(repo)

		const voters = 8
		var wg sync.WaitGroup
		for i := 0; i < voters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.Upvote(ctx, "s1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, voters, repo.get("s1").Voting)
	})
}

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()

	unlockA := locks.Lock("a")
	// 別キーはブロックされない
	unlockB := locks.Lock("b")
	unlockB()
	unlockA()

	assert.Empty(t, locks.locks)
}
