// Package fetcher performs every outbound request of the tool through the
// response cache: a stored payload is returned without touching the network,
// a miss is fetched, stored, then returned.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amaumene/bestmovies/internal/cache"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// RequestFunc performs the network side of a request and returns its payload.
type RequestFunc func(ctx context.Context) (json.RawMessage, error)

// Executor couples the cache store with an HTTP client.
type Executor struct {
	store      cache.Store
	httpClient *http.Client
	logger     logger.Logger

	// redact hides secrets embedded in cache keys before they are logged.
	redact func(string) string
}

// New creates an Executor. The store is shared by every caller for the whole
// process lifetime.
func New(store cache.Store, httpClient *http.Client, log logger.Logger) *Executor {
	return &Executor{
		store:      store,
		httpClient: httpClient,
		logger:     log,
		redact:     func(s string) string { return s },
	}
}

// SetRedactor installs a function applied to keys before they are logged.
func (e *Executor) SetRedactor(redact func(string) string) {
	if redact != nil {
		e.redact = redact
	}
}

// FetchOrCache returns the payload cached under key, or calls perform, stores
// its payload under key and returns it. A failing perform stores nothing, so
// the next call for the same key goes back to the network.
func (e *Executor) FetchOrCache(ctx context.Context, key string, perform RequestFunc) (json.RawMessage, error) {
	if payload, ok := e.store.Get(key); ok {
		e.logger.Infof("[Cache] using cache for %s", e.redact(key))
		return payload, nil
	}

	e.logger.Infof("[Fetcher] fetching %s", e.redact(key))
	payload, err := perform(ctx)
	if err != nil {
		return nil, err
	}

	if err := e.store.Put(key, payload); err != nil {
		return nil, fmt.Errorf("failed to cache response for %s: %w", e.redact(key), err)
	}
	return payload, nil
}

// FetchPage returns the body of the page at pageURL. Pages are keyed by URL.
func (e *Executor) FetchPage(ctx context.Context, pageURL string) (string, error) {
	payload, err := e.FetchOrCache(ctx, cache.BuildKey(pageURL, nil), func(ctx context.Context) (json.RawMessage, error) {
		body, err := e.get(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return json.Marshal(string(body))
	})
	if err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		return "", apperrors.NewStructureError(fmt.Sprintf("cached page %s is not text", pageURL), err)
	}
	return text, nil
}

// FetchJSON issues a GET to baseURL with params as the query string and
// returns the raw JSON response body.
func (e *Executor) FetchJSON(ctx context.Context, baseURL string, params map[string]string) (json.RawMessage, error) {
	key := cache.BuildKey(baseURL, params)

	return e.FetchOrCache(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, apperrors.NewTransportError(e.redact(key), err)
		}
		query := u.Query()
		for name, value := range params {
			query.Set(name, value)
		}
		u.RawQuery = query.Encode()

		body, err := e.get(ctx, u.String())
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, apperrors.NewEnrichmentError(fmt.Sprintf("response from %s is not JSON", baseURL), nil)
		}
		return json.RawMessage(body), nil
	})
}

// get performs a GET and returns the body of a 2xx response.
func (e *Executor) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(e.redact(target), err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = e.redact(urlErr.URL)
		}
		return nil, apperrors.NewTransportError(e.redact(target), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewTransportError(e.redact(target), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(e.redact(target), fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}
