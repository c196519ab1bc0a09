package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/arttown/internal/db"
)

func TestCompletionScripts(t *testing.T) {
	isolate(t)
	for shell, marker := range map[string]string{
		"bash": "__start_arttown",
		"zsh":  "#compdef arttown",
		"fish": "complete -c arttown",
	} {
		out, err := run(t, "", "completion", shell)
		require.NoError(t, err, shell)
		assert.Contains(t, out, marker, shell)
	}
}

func TestArticleIDCompletionStaysOffline(t *testing.T) {
	tmp := isolate(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()
	t.Setenv("ARTTOWN_REMOTE_URL", srv.URL)
	t.Setenv("ARTTOWN_REMOTE_ANON_KEY", "anon")

	start := time.Now()
	out, err := run(t, "", "__complete", "article", "show", "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, out, "1\t5 Fun Color Mixing Tips")
	assert.Contains(t, out, "4\tMake Art with Nature")
	assert.Zero(t, hits.Load())

	store, err := db.Open(context.Background(), "sqlite://"+filepath.Join(tmp, "data", "arttown", "arttown.db"))
	require.NoError(t, err)
	defer store.Close()
	recs, err := store.ListRefreshes(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBrowseNeedsTerminal(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "browse")
	require.ErrorContains(t, err, "interactive terminal")
}

func TestServeRejectsBadAddress(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "serve", "--addr", "no-port")
	require.ErrorContains(t, err, "listen no-port")
}

func TestServeUntilCanceled(t *testing.T) {
	isolate(t)
	t.Setenv("ARTTOWN_CONTENT_REFRESH_INTERVAL", "0")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--addr", addr})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
