package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"calbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

func limitedRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	r := gin.New()
	if err := r.SetTrustedProxies(trusted); err != nil {
		t.Fatalf("trusted proxies: %v", err)
	}
	r.GET("/x", RateLimit("x", 2), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hitFrom(r *gin.Engine, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitPerClient(t *testing.T) {
	r := limitedRouter(t, nil)
	hit := func(ip string) int { return hitFrom(r, ip+":4000", "") }

	for i := 0; i < 2; i++ {
		if code := hit("1.1.1.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := hit("1.1.1.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := hit("2.2.2.2"); code != http.StatusOK {
		t.Fatalf("other clients should not be limited, got %d", code)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	r := limitedRouter(t, nil)
	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		if code := hitFrom(r, "203.0.113.9:4000", xff); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := hitFrom(r, "203.0.113.9:4000", "3.3.3.3"); code != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For must not reset the limit, got %d", code)
	}
}

func TestRateLimitHonorsTrustedProxy(t *testing.T) {
	r := limitedRouter(t, []string{"10.0.0.1"})
	for i := 0; i < 2; i++ {
		if code := hitFrom(r, "10.0.0.1:4000", "1.1.1.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := hitFrom(r, "10.0.0.1:4000", "1.1.1.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := hitFrom(r, "10.0.0.1:4000", "2.2.2.2"); code != http.StatusOK {
		t.Fatalf("clients behind the proxy are limited separately, got %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit("x", 0), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}
