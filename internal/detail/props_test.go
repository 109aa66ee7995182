package detail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoffeeStore-App/internal/domain/model"
)

type stubLister struct {
	stores []model.CoffeeStore
	err    error
}

func (l *stubLister) GetCoffeeStoresByLocation(ctx context.Context, latLong string, limit int) ([]model.CoffeeStore, error) {
	return l.stores, l.err
}

func TestStaticPathsAndProps(t *testing.T) {
	ctx := context.Background()
	lister := &stubLister{stores: []model.CoffeeStore{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}

	ids, err := StaticPaths(ctx, lister)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	props, err := StaticProps(ctx, lister, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", props.Name)

	empty, err := StaticProps(ctx, lister, "zzz")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = StaticPaths(ctx, &stubLister{err: errors.New("offline")})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	t.Run("表示中", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, View{
			State: StateDisplaying,
			Store: model.CoffeeStore{Name: "Cafe A", Address: "1 King St", Neighbourhood: "Downtown"},
			Votes: 3,
		}))

		out := buf.String()
		assert.Contains(t, out, "Cafe A")
		assert.Contains(t, out, "1 King St")
		assert.Contains(t, out, "Downtown")
		assert.Contains(t, out, "votes:   3")
		assert.Contains(t, out, model.PlaceholderImageURL)
	})

	t.Run("読み込み中とエラー", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, View{State: StateLoading}))
		assert.Equal(t, "Loading...\n", buf.String())

		buf.Reset()
		require.NoError(t, Render(&buf, View{State: StateError}))
		assert.Equal(t, "Something went wrong retrieving coffee store page!\n", buf.String())
	})
}
