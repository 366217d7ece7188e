package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(cfg Config) *Client {
	return New(cfg, zerolog.Nop())
}

func TestGetCachesWithinTTL(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(Config{CacheTTL: time.Minute})

	first, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetRefetchesAfterExpiry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	ttl := 50 * time.Millisecond
	c := newTestClient(Config{})

	_, err := c.Get(context.Background(), srv.URL, &Options{CacheTTL: &ttl})
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	_, err = c.Get(context.Background(), srv.URL, &Options{CacheTTL: &ttl})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheKeyDistinguishesParams(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(r.URL.Query().Get("symbol")))
	}))
	defer srv.Close()

	c := newTestClient(Config{CacheTTL: time.Minute})

	a, err := c.Get(context.Background(), srv.URL, &Options{Params: map[string]string{"symbol": "NABIL"}})
	require.NoError(t, err)
	b, err := c.Get(context.Background(), srv.URL, &Options{Params: map[string]string{"symbol": "ADBL"}})
	require.NoError(t, err)

	assert.Equal(t, "NABIL", a.Text())
	assert.Equal(t, "ADBL", b.Text())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRetriesOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(Config{RetryCount: 3, RetryBackoff: time.Millisecond})

	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(Config{RetryCount: 3, RetryBackoff: time.Millisecond})

	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.Success())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRateLimitSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(Config{MinInterval: 40 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL, nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestPostFormData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Write([]byte(r.PostForm.Get("q")))
	}))
	defer srv.Close()

	c := newTestClient(Config{})

	resp, err := c.Post(context.Background(), srv.URL, &Options{FormData: map[string]string{"q": "nepse banks"}})
	require.NoError(t, err)
	assert.Equal(t, "nepse banks", resp.Text())
}
