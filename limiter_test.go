package blogcatalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewRateLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if ok, _ := limiter.Allow(ip); !ok {
		t.Fatalf("expected first request to be allowed")
	}
	if ok, _ := limiter.Allow(ip); !ok {
		t.Fatalf("expected second request to be allowed")
	}
	ok, wait := limiter.Allow(ip)
	if ok {
		t.Fatalf("expected third request to be blocked")
	}
	if wait <= 0 || wait > 200*time.Millisecond {
		t.Fatalf("unexpected retry wait %s", wait)
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRateLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if ok, _ := limiter.Allow(ip); !ok {
		t.Fatalf("expected first request to be allowed")
	}
	if ok, _ := limiter.Allow(ip); ok {
		t.Fatalf("expected second request to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if ok, _ := limiter.Allow(ip); !ok {
		t.Fatalf("expected request after window to be allowed")
	}
}

func TestRateLimiterIsPerIP(t *testing.T) {
	limiter := NewRateLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	if ok, _ := limiter.Allow("203.0.113.30"); !ok {
		t.Fatalf("expected first ip to be allowed")
	}
	if ok, _ := limiter.Allow("203.0.113.31"); !ok {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if ok, _ := limiter.Allow("203.0.113.30"); ok {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limiter.Middleware)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.40:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status %d, want %d", i+1, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Fatalf("missing Retry-After header")
		}
	}
}
