package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "test-cache",
		MaxBodyBytes: 1 << 16,
	}
}

// cachedServer serves GET /events/:id, counting handler invocations.
func cachedServer(rc *ResponseCache, calls *int) *echo.Echo {
	e := echo.New()
	e.GET("/events/:id", func(c echo.Context) error {
		*calls++
		if c.Param("id") == "missing" {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false})
		}
		return c.JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "call": *calls})
	}, rc.Middleware())
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestResponseCacheHitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, zap.NewNop())
	calls := 0
	e := cachedServer(rc, &calls)

	first := get(e, "/events/a")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(e, "/events/a")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	require.NoError(t, rc.Invalidate(context.Background()))
	third := get(e, "/events/a")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestResponseCacheKeysOnConcretePath(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := cachedServer(NewResponseCache(cacheConfig(), rdb, zap.NewNop()), &calls)

	get(e, "/events/a")
	b := get(e, "/events/b")
	assert.Equal(t, "MISS", b.Header().Get("X-Cache"))
	assert.Contains(t, b.Body.String(), `"id":"b"`)
	assert.Equal(t, 2, calls)
}

func TestResponseCacheSkipsNonOK(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := cachedServer(NewResponseCache(cacheConfig(), rdb, zap.NewNop()), &calls)

	get(e, "/events/missing")
	rec := get(e, "/events/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
	rc := NewResponseCache(cacheConfig(), nil, zap.NewNop())
	calls := 0
	e := cachedServer(rc, &calls)

	get(e, "/events/a")
	rec := get(e, "/events/a")
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
	assert.NoError(t, rc.Invalidate(context.Background()))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestResponseCacheHitKeepsPerRequestHeaders(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, zap.NewNop())

	remaining := 10
	countdown := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			remaining--
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			return next(c)
		}
	}
	e := echo.New()
	e.Use(echomw.RequestID())
	e.GET("/events", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	}, countdown, rc.Middleware())

	first := get(e, "/events")
	hit := get(e, "/events")
	require.Equal(t, "HIT", hit.Header().Get("X-Cache"))

	assert.Len(t, hit.Header().Values(echo.HeaderXRequestID), 1)
	assert.NotEqual(t, first.Header().Get(echo.HeaderXRequestID), hit.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, []string{"8"}, hit.Header().Values("X-RateLimit-Remaining"))
	assert.Contains(t, hit.Header().Get(echo.HeaderContentType), "application/json")
}

func TestReplayable(t *testing.T) {
	for _, k := range []string{"Content-Length", "X-Request-Id", "x-cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"} {
		assert.False(t, replayable(k), k)
	}
	for _, k := range []string{"Content-Type", "Cache-Control"} {
		assert.True(t, replayable(k), k)
	}
}
