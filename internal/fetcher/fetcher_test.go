package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/bestmovies/internal/cache"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/pkg/httputil"
	"github.com/amaumene/bestmovies/pkg/logger"
)

func newTestExecutor(t *testing.T) (*Executor, *cache.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	store := cache.OpenFileStore(path, logger.Discard())
	return New(store, httputil.NewDefaultHTTPClient(), logger.Discard()), store, path
}

func TestFetchOrCachePerformsOnce(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	ctx := context.Background()

	var calls int
	perform := func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"n":1}`), nil
	}

	first, err := exec.FetchOrCache(ctx, "key", perform)
	require.NoError(t, err)
	second, err := exec.FetchOrCache(ctx, "key", perform)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, string(first), string(second))
}

func TestFetchOrCacheDoesNotStoreFailures(t *testing.T) {
	exec, store, _ := newTestExecutor(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var calls int
	failing := func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return nil, boom
	}

	_, err := exec.FetchOrCache(ctx, "key", failing)
	require.ErrorIs(t, err, boom)
	_, err = exec.FetchOrCache(ctx, "key", failing)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, store.Len())
}

func TestFetchPageCachesBody(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html><body>Coco</body></html>"))
	}))
	defer srv.Close()

	exec, store, _ := newTestExecutor(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := exec.FetchPage(ctx, srv.URL+"/m/coco")
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Coco</body></html>", body)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	_, ok := store.Get(srv.URL + "/m/coco")
	assert.True(t, ok)
}

func TestFetchPageSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	seed := cache.OpenFileStore(path, logger.Discard())
	require.NoError(t, seed.Put("http://unreachable.invalid/page", json.RawMessage(`"<p>seeded</p>"`)))

	// A fresh store over the same file stands in for a new process.
	store := cache.OpenFileStore(path, logger.Discard())
	exec := New(store, httputil.NewDefaultHTTPClient(), logger.Discard())

	body, err := exec.FetchPage(context.Background(), "http://unreachable.invalid/page")
	require.NoError(t, err)
	assert.Equal(t, "<p>seeded</p>", body)
}

func TestFetchPageNonSuccessStatusIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	exec, store, _ := newTestExecutor(t)

	_, err := exec.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
	assert.Equal(t, 0, store.Len())
}

func TestFetchJSONBuildsQueryAndKey(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{"apikey": r.URL.Query().Get("apikey"), "t": r.URL.Query().Get("t")}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Title":"Lady Bird","Response":"True"}`))
	}))
	defer srv.Close()

	exec, store, _ := newTestExecutor(t)
	params := map[string]string{"t": "Lady Bird", "apikey": "abcd1234"}

	payload, err := exec.FetchJSON(context.Background(), srv.URL+"/", params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Title":"Lady Bird","Response":"True"}`, string(payload))
	assert.Equal(t, map[string]string{"apikey": "abcd1234", "t": "Lady Bird"}, gotQuery)

	_, ok := store.Get(cache.BuildKey(srv.URL+"/", map[string]string{"apikey": "abcd1234", "t": "Lady Bird"}))
	assert.True(t, ok)
}

func TestFetchJSONRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	exec, store, _ := newTestExecutor(t)

	_, err := exec.FetchJSON(context.Background(), srv.URL, map[string]string{"t": "Up"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEnrichmentFailed))
	assert.Equal(t, 0, store.Len())
}

func TestRedactorHidesKeyInTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	exec, _, _ := newTestExecutor(t)
	exec.SetRedactor(func(s string) string {
		return strings.ReplaceAll(s, "secret99", "[***]")
	})

	_, err := exec.FetchJSON(context.Background(), srv.URL, map[string]string{"apikey": "secret99"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret99")
}
