package subscription

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// storeFactories lists every backend so each behaviour runs against both.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"sqlite": func() Store {
			s, err := OpenSQLite(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"file": func() Store {
			s, err := OpenFile(filepath.Join(t.TempDir(), "subscriptions.json"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreSearch(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()
			require.NoError(t, Seed(ctx, s, []string{"golang", "GoPro", "rust", "gardening"}))

			all, err := s.Search(ctx, "", false)
			require.NoError(t, err)
			assert.Equal(t, []string{"gardening", "golang", "GoPro", "rust"}, names(all))

			matches, err := s.Search(ctx, "go", false)
			require.NoError(t, err)
			assert.Contains(t, names(matches), "golang")
			assert.Contains(t, names(matches), "GoPro")
			assert.NotContains(t, names(matches), "rust")
		})
	}
}

func TestStoreHiddenFiltering(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()
			require.NoError(t, Seed(ctx, s, []string{"golang", "rust"}))
			require.NoError(t, s.SetHidden(ctx, "RUST", true))

			visible, err := s.Search(ctx, "", false)
			require.NoError(t, err)
			assert.Equal(t, []string{"golang"}, names(visible))

			all, err := s.Search(ctx, "", true)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.True(t, all[1].Hidden)
		})
	}
}

func TestStoreSubscribeIsIdempotent(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()
			require.NoError(t, s.Subscribe(ctx, "golang"))
			require.NoError(t, s.Subscribe(ctx, "Golang"))

			all, err := s.Search(ctx, "", true)
			require.NoError(t, err)
			assert.Len(t, all, 1)
			assert.Error(t, s.Subscribe(ctx, "  "))
		})
	}
}

func TestStoreUnknownNames(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()
			assert.ErrorIs(t, s.Unsubscribe(ctx, "nope"), ErrNotFound)
			assert.ErrorIs(t, s.SetHidden(ctx, "nope", true), ErrNotFound)
		})
	}
}

func TestStoreDefaultPointer(t *testing.T) {
	for name, open := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open()

			def, err := s.Default(ctx)
			require.NoError(t, err)
			assert.Empty(t, def)

			require.NoError(t, s.SetDefault(ctx, "golang"))
			def, err = s.Default(ctx)
			require.NoError(t, err)
			assert.Equal(t, "golang", def)

			require.NoError(t, s.ResetDefault(ctx))
			def, err = s.Default(ctx)
			require.NoError(t, err)
			assert.Empty(t, def)
		})
	}
}

func TestFileStorePersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "subs.json")

	a, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, a.Subscribe(ctx, "golang"))
	require.NoError(t, a.SetDefault(ctx, "golang"))
	require.NoError(t, a.Close())

	b, err := OpenFile(path)
	require.NoError(t, err)
	defer b.Close()

	all, err := b.Search(ctx, "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, names(all))
	def, err := b.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "golang", def)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}
