// Package detail はコーヒーショップ詳細ページの状態遷移（解決・同期・投票）を扱う。
package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"CoffeeStore-App/internal/domain/model"
	"CoffeeStore-App/internal/session"
)

// State 詳細ページの状態
type State int

const (
	StateResolving State = iota
	StateLoading
	StateDisplaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotMounted アンマウント後の操作
	ErrNotMounted = errors.New("controller is not mounted")
	// ErrNotDisplaying 表示中でない状態での投票
	ErrNotDisplaying = errors.New("coffee store is not displayed")
	// ErrEmptyUpvote 投票APIが空の結果を返した
	ErrEmptyUpvote = errors.New("upvote returned no record")
)

// StoreAPI 詳細ページが呼び出すAPI
type StoreAPI interface {
	GetCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error)
	CreateCoffeeStore(ctx context.Context, store model.CoffeeStore) (*model.CoffeeStore, error)
	FavoriteCoffeeStoreByID(ctx context.Context, id string) ([]model.CoffeeStore, error)
}

// View 描画用のスナップショット
type View struct {
	State     State
	Store     model.CoffeeStore
	Votes     int
	Err       error
	UpvoteErr error
}

// Controller 詳細ページのコントローラー
// マウントごとに世代番号を進め、古い世代のレスポンスは状態に反映しない
type Controller struct {
	api   StoreAPI
	cache *session.StoreCache

	mu         sync.Mutex
	id         string
	props      *model.CoffeeStore
	mounted    bool
	generation uint64
	state      State
	store      model.CoffeeStore
	votes      int
	err        error
	upvoteErr  error
	synced     map[string]struct{}
}

// NewController 新しいControllerを作成（cache は nil でもよい）
func NewController(api StoreAPI, cache *session.StoreCache) *Controller {
	return &Controller{
		api:    api,
		cache:  cache,
		synced: make(map[string]struct{}),
	}
}

// Mount id のページを表示する。props はビルド時に生成されたストア（空でもよい）
func (c *Controller) Mount(id string, props *model.CoffeeStore) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.id = id
	c.props = props
	c.mounted = true
	c.state = StateResolving
	c.store = model.CoffeeStore{}
	c.votes = 0
	c.err = nil
	c.upvoteErr = nil
	c.synced = make(map[string]struct{})
}

// Unmount ページを離れる。処理中のレスポンスは破棄される
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.mounted = false
}

// Resolve ビルド時プロパティ → セッションキャッシュ → リモート取得 の順でストアを解決する
// 同じIDのアップサートはマウント中に1回しか行わない
func (c *Controller) Resolve(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	gen, id, props := c.generation, c.id, c.props
	c.mu.Unlock()

	local, found := c.resolveLocal(id, props)
	if found {
		c.apply(gen, func() {
			c.store = local
			c.state = StateDisplaying
		})
		c.syncOnce(ctx, gen, local)
	} else {
		c.apply(gen, func() {
			c.state = StateLoading
		})
	}

	stores, err := c.api.GetCoffeeStoreByID(ctx, id)

	var result error
	c.apply(gen, func() {
		switch {
		case err != nil:
			c.state = StateError
			c.err = err
			result = err
		case len(stores) > 0:
			c.store = stores[0]
			c.votes = stores[0].Voting
			c.state = StateDisplaying
		case found:
			// まだ永続化されていない候補レコードは投票数0で表示する
			c.state = StateDisplaying
		default:
			c.state = StateError
			c.err = fmt.Errorf("%w: coffee store %s", model.ErrNotFound, id)
			result = c.err
		}
	})
	return result
}

// Upvote 投票APIの成功を待ってから表示中の投票数を1増やす
func (c *Controller) Upvote(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	if c.state != StateDisplaying {
		c.mu.Unlock()
		return ErrNotDisplaying
	}
	gen, id := c.generation, c.id
	c.mu.Unlock()

	stores, err := c.api.FavoriteCoffeeStoreByID(ctx, id)
	if err == nil && len(stores) == 0 {
		err = ErrEmptyUpvote
	}

	c.apply(gen, func() {
		if err != nil {
			c.upvoteErr = err
			return
		}
		c.votes++
		c.upvoteErr = nil
	})

	if err != nil {
		slog.Warn("upvote failed", "id", id, "error", err)
	}
	return err
}

// View 現在の状態のスナップショットを返す
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		State:     c.state,
		Store:     c.store,
		Votes:     c.votes,
		Err:       c.err,
		UpvoteErr: c.upvoteErr,
	}
}

func (c *Controller) resolveLocal(id string, props *model.CoffeeStore) (model.CoffeeStore, bool) {
	if !props.IsEmpty() {
		return *props, true
	}
	if c.cache != nil && c.cache.Len() > 0 {
		if store, ok := c.cache.Lookup(id); ok {
			return store, true
		}
	}
	return model.CoffeeStore{}, false
}

// syncOnce 候補レコードをレコードストアに登録する（IDごとに1回）
// レスポンスの投票数は使わず、表示はリモート取得の値に従う
func (c *Controller) syncOnce(ctx context.Context, gen uint64, store model.CoffeeStore) {
	c.mu.Lock()
	if !c.current(gen) {
		c.mu.Unlock()
		return
	}
	if _, done := c.synced[store.ID]; done {
		c.mu.Unlock()
		return
	}
	c.synced[store.ID] = struct{}{}
	c.mu.Unlock()

	if _, err := c.api.CreateCoffeeStore(ctx, store); err != nil {
		slog.Warn("error creating coffee store", "id", store.ID, "error", err)
	}
}

// apply 現在の世代のときだけ状態を更新する
func (c *Controller) apply(gen uint64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(gen) {
		return
	}
	fn()
}

func (c *Controller) current(gen uint64) bool {
	return c.mounted && c.generation == gen
}
