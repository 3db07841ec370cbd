package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(Auth(AuthOptions{HeaderFallback: true}))
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/discussions", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/users/online", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_PerReaderBuckets(t *testing.T) {
	r := limitedRouter(NewRateLimiter(0.0001, 2, KeyByReaderOrIP(), nil))

	for i := 0; i < 2; i++ {
		if w := do(t, r, http.MethodGet, "/discussions", nil, map[string]string{HeaderUserID: "a"}); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := do(t, r, http.MethodGet, "/discussions", nil, map[string]string{HeaderUserID: "a"})
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("third request: %d retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	// Another reader has a separate bucket.
	if w := do(t, r, http.MethodGet, "/discussions", nil, map[string]string{HeaderUserID: "b"}); w.Code != http.StatusOK {
		t.Fatalf("reader b: %d", w.Code)
	}
	// Anonymous traffic is keyed by IP.
	if w := do(t, r, http.MethodGet, "/discussions", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("anonymous: %d", w.Code)
	}
}

func TestRateLimiter_SkipAndBypass(t *testing.T) {
	r := limitedRouter(NewRateLimiter(0.0001, 1, nil, SkipPaths("/users/online")))
	hdr := map[string]string{HeaderUserID: "a"}

	do(t, r, http.MethodGet, "/discussions", nil, hdr)
	if w := do(t, r, http.MethodGet, "/discussions", nil, hdr); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected limit, got %d", w.Code)
	}
	for i := 0; i < 5; i++ {
		if w := do(t, r, http.MethodPut, "/users/online", nil, hdr); w.Code != http.StatusOK {
			t.Fatalf("skipped route limited: %d", w.Code)
		}
	}
	hdr["X-Replay"] = "1"
	if w := do(t, r, http.MethodGet, "/discussions", nil, hdr); w.Code != http.StatusOK {
		t.Fatalf("replay limited: %d", w.Code)
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil, nil)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.limiterFor("old")
	clock = clock.Add(rl.idleTTL)
	rl.sweepN = 4998
	rl.limiterFor("new")
	rl.limiterFor("new")

	if _, ok := rl.buckets["old"]; ok {
		t.Fatal("idle bucket survived the sweep")
	}
	if _, ok := rl.buckets["new"]; !ok {
		t.Fatal("active bucket evicted")
	}
	if rl.sweepN != 0 {
		t.Fatalf("sweep counter = %d", rl.sweepN)
	}
}
