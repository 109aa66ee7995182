package detail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/session"
)

// fakeStoreAPI レコードストアをマップで模したAPI
type fakeStoreAPI struct {
	mu          sync.Mutex
	stores      map[string]model.CoffeeStore
	created     []model.CoffeeStore
	getErr      error
	favoriteErr error
	emptyUpvote bool
	// beforeGet GetCoffeeStoreByID のレスポンス直前に呼ばれる
	beforeGet func()
}

func newFakeStoreAPI() *fakeStoreAPI {
	return &fakeStoreAPI{stores: make(map[string]model.CoffeeStore)}
}

func (f *fakeStoreAPI) GetCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error) {
	if f.beforeGet != nil {
		f.beforeGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if s, ok := f.stores[id]; ok {
		return []model.CoffeeStore{s}, nil
	}
	return []model.CoffeeStore{}, nil
}

func (f *fakeStoreAPI) CreateCoffeeStore(ctx context.Context, store model.CoffeeStore) (*model.CoffeeStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, store)
	if existing, ok := f.stores[store.ID]; ok {
		return &existing, nil
	}
	store.Voting = 0
	f.stores[store.ID] = store
	return &store, nil
}

func (f *fakeStoreAPI) FavoriteCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favoriteErr != nil {
		return nil, f.favoriteErr
	}
	if f.emptyUpvote {
		return []model.CoffeeStore{}, nil
	}
	s, ok := f.stores[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	s.Voting++
	f.stores[id] = s
	return []model.CoffeeStore{s}, nil
}

func (f *fakeStoreAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func cacheWith(stores ...model.CoffeeStore) *session.StoreCache {
	cache := session.NewStoreCache()
	cache.Set("test", stores)
	return cache
}

func TestController_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("空のプロパティはセッションキャッシュから解決し、1回だけ登録する", func(t *testing.T) {
		api := newFakeStoreAPI()
		c := NewController(api, cacheWith(model.CoffeeStore{ID: "abc", Name: "Cafe A", Address: "1 King St"}))

		c.Mount("abc", &model.CoffeeStore{})
		require.NoError(t, c.Resolve(ctx))

		view := c.View()
		assert.Equal(t, StateDisplaying, view.State)
		assert.Equal(t, "Cafe A", view.Store.Name)
		assert.Equal(t, 0, view.Votes)
		require.Equal(t, 1, api.createCount())
		assert.Equal(t, "abc", api.created[0].ID)

		// 再解決してもアップサートは行わない
		require.NoError(t, c.Resolve(ctx))
		assert.Equal(t, 1, api.createCount())
	})

	t.Run("ビルド時プロパティがあればそれを使う", func(t *testing.T) {
		api := newFakeStoreAPI()
		c := NewController(api, cacheWith(model.CoffeeStore{ID: "abc", Name: "From cache"}))

		c.Mount("abc", &model.CoffeeStore{ID: "abc", Name: "From props"})
		require.NoError(t, c.Resolve(ctx))

		assert.Equal(t, "From props", c.View().Store.Name)
		require.Equal(t, 1, api.createCount())
		assert.Equal(t, "From props", api.created[0].Name)
	})

	t.Run("永続化済みの投票数を表示する", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.stores["abc"] = model.CoffeeStore{ID: "abc", Name: "Cafe A", Voting: 12}
		c := NewController(api, cacheWith(model.CoffeeStore{ID: "abc", Name: "Cafe A"}))

		c.Mount("abc", nil)
		require.NoError(t, c.Resolve(ctx))

		view := c.View()
		assert.Equal(t, StateDisplaying, view.State)
		assert.Equal(t, 12, view.Votes)
	})

	t.Run("ローカルに無い場合はリモートから取得する", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.stores["xyz"] = model.CoffeeStore{ID: "xyz", Name: "Remote", Voting: 3}
		c := NewController(api, session.NewStoreCache())

		c.Mount("xyz", nil)
		require.NoError(t, c.Resolve(ctx))

		view := c.View()
		assert.Equal(t, StateDisplaying, view.State)
		assert.Equal(t, "Remote", view.Store.Name)
		assert.Equal(t, 3, view.Votes)
		assert.Equal(t, 0, api.createCount())
	})

	t.Run("どこにも無い場合はエラー表示", func(t *testing.T) {
		api := newFakeStoreAPI()
		c := NewController(api, nil)

		c.Mount("missing", nil)
		err := c.Resolve(ctx)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Equal(t, StateError, c.View().State)
	})

	t.Run("リモート取得の失敗はエラー表示", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.getErr = model.ErrRemoteUnavailable
		c := NewController(api, cacheWith(model.CoffeeStore{ID: "abc", Name: "Cafe A"}))

		c.Mount("abc", nil)
		err := c.Resolve(ctx)
		assert.ErrorIs(t, err, model.ErrRemoteUnavailable)
		assert.Equal(t, StateError, c.View().State)
	})

	t.Run("マウント前の解決はエラー", func(t *testing.T) {
		c := NewController(newFakeStoreAPI(), nil)
		assert.ErrorIs(t, c.Resolve(ctx), ErrNotMounted)
	})
}

func TestController_StaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("アンマウント後のレスポンスは反映しない", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.stores["xyz"] = model.CoffeeStore{ID: "xyz", Name: "Remote", Voting: 3}
		c := NewController(api, nil)
		api.beforeGet = c.Unmount

		c.Mount("xyz", nil)
		require.NoError(t, c.Resolve(ctx))

		view := c.View()
		assert.Equal(t, StateLoading, view.State)
		assert.Empty(t, view.Store.ID)
		assert.Equal(t, 0, view.Votes)
	})

	t.Run("別のIDへの遷移後は古いレスポンスを反映しない", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.stores["old"] = model.CoffeeStore{ID: "old", Name: "Old", Voting: 9}
		c := NewController(api, nil)

		c.Mount("old", nil)
		api.beforeGet = func() {
			api.beforeGet = nil
			c.Mount("new", nil)
		}
		require.NoError(t, c.Resolve(ctx))

		view := c.View()
		assert.Equal(t, StateResolving, view.State)
		assert.Empty(t, view.Store.ID)
	})

	t.Run("再マウントすると再び1回だけ登録する", func(t *testing.T) {
		api := newFakeStoreAPI()
		c := NewController(api, cacheWith(model.CoffeeStore{ID: "abc", Name: "Cafe A"}))

		c.Mount("abc", nil)
		require.NoError(t, c.Resolve(ctx))
		c.Unmount()
		c.Mount("abc", nil)
		require.NoError(t, c.Resolve(ctx))

		assert.Equal(t, 2, api.createCount())
		assert.Len(t, api.stores, 1)
	})
}

func TestController_Upvote(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeStoreAPI, *Controller) {
		api := newFakeStoreAPI()
		api.stores["abc"] = model.CoffeeStore{ID: "abc", Name: "Cafe A", Voting: 2}
		c := NewController(api, nil)
		c.Mount("abc", nil)
		require.NoError(t, c.Resolve(ctx))
		return api, c
	}

	t.Run("成功すると表示が1増える", func(t *testing.T) {
		api, c := setup(t)

		require.NoError(t, c.Upvote(ctx))
		require.NoError(t, c.Upvote(ctx))

		view := c.View()
		assert.Equal(t, 4, view.Votes)
		assert.Nil(t, view.UpvoteErr)
		assert.Equal(t, 4, api.stores["abc"].Voting)
	})

	t.Run("失敗時は表示を変えない", func(t *testing.T) {
		api, c := setup(t)
		api.favoriteErr = model.ErrRemoteUnavailable

		err := c.Upvote(ctx)
		assert.ErrorIs(t, err, model.ErrRemoteUnavailable)

		view := c.View()
		assert.Equal(t, 2, view.Votes)
		assert.ErrorIs(t, view.UpvoteErr, model.ErrRemoteUnavailable)
	})

	t.Run("空のレスポンスは失敗扱い", func(t *testing.T) {
		api, c := setup(t)
		api.emptyUpvote = true

		assert.ErrorIs(t, c.Upvote(ctx), ErrEmptyUpvote)
		assert.Equal(t, 2, c.View().Votes)
	})

	t.Run("表示前の投票はできない", func(t *testing.T) {
		api := newFakeStoreAPI()
		api.getErr = errors.New("down")
		c := NewController(api, nil)
		c.Mount("abc", nil)
		_ = c.Resolve(ctx)

		assert.ErrorIs(t, c.Upvote(ctx), ErrNotDisplaying)
	})
}
