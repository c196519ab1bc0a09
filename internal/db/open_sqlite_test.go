package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/arttown/pkg/api"
)

func setupTestDB(t *testing.T) (Store, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := Open(ctx, "sqlite://"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, ctx
}

func stores(t *testing.T) map[string]Store {
	sq, _ := setupTestDB(t)
	mem, err := Open(context.Background(), "mem://")
	require.NoError(t, err)
	return map[string]Store{"sqlite": sq, "mem": mem}
}

func TestContentCache(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			_, err := store.LoadTable(ctx, api.TableCourses)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.SaveTable(ctx, CachedTable{
				Table: api.TableCourses, Payload: []byte(`[{"id":1}]`), Digest: "d1", FetchedAt: now,
			}))
			got, err := store.LoadTable(ctx, api.TableCourses)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, string(got.Payload))
			assert.Equal(t, "d1", got.Digest)
			assert.True(t, now.Equal(got.FetchedAt), "fetched_at %v != %v", got.FetchedAt, now)

			later := now.Add(time.Minute)
			require.NoError(t, store.SaveTable(ctx, CachedTable{
				Table: api.TableCourses, Payload: []byte(`[]`), Digest: "d2", FetchedAt: later,
			}))
			got, err = store.LoadTable(ctx, api.TableCourses)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got.Payload))
			assert.Equal(t, "d2", got.Digest)

			ts, ok := CacheFetchedAt(ctx, store, api.TableCourses)
			assert.True(t, ok)
			assert.True(t, later.Equal(ts))
			_, ok = CacheFetchedAt(ctx, store, api.TableArticles)
			assert.False(t, ok)
		})
	}
}

func TestSaveRefresh(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

			require.NoError(t, store.SaveRefresh(ctx, []CachedTable{
				{Table: api.TableSettings, Payload: []byte(`[]`), FetchedAt: base},
				{Table: api.TableArticles, Payload: []byte(`[]`), FetchedAt: base},
			}, RefreshRecord{Time: base, Source: "remote", OK: true}))
			require.NoError(t, store.AppendRefresh(ctx, RefreshRecord{
				Time: base.Add(time.Minute), Source: "static", OK: false, Message: "remote unavailable",
			}))

			_, err := store.LoadTable(ctx, api.TableSettings)
			require.NoError(t, err)
			_, err = store.LoadTable(ctx, api.TableArticles)
			require.NoError(t, err)

			recs, err := store.ListRefreshes(ctx, 0)
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, "static", recs[0].Source)
			assert.False(t, recs[0].OK)
			assert.Equal(t, "remote unavailable", recs[0].Message)
			assert.True(t, recs[1].OK)

			recs, err = store.ListRefreshes(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, recs, 1)
		})
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "postgres://localhost/db")
	require.Error(t, err)
}

func TestRefreshLogIsTrimmed(t *testing.T) {
	prev := refreshLogKeep
	refreshLogKeep = 3
	t.Cleanup(func() { refreshLogKeep = prev })

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
			for i := 0; i < 5; i++ {
				require.NoError(t, store.SaveRefresh(ctx, nil, RefreshRecord{Time: base.Add(time.Duration(i) * time.Minute), Source: "static", OK: true}))
			}
			recs, err := store.ListRefreshes(ctx, 0)
			require.NoError(t, err)
			require.Len(t, recs, 3)
			assert.True(t, recs[0].Time.Equal(base.Add(4*time.Minute)))
			assert.True(t, recs[2].Time.Equal(base.Add(2*time.Minute)))
		})
	}
}
