package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitRule{Rate: 1, Burst: 2}, limiter))
	r.POST("/triage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/triage", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request limited, got %v", codes)
	}
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if allowed, _ := limiter.Allow("ip", rule); !allowed {
		t.Fatalf("expected first call allowed")
	}
	if allowed, retryAfter := limiter.Allow("ip", rule); allowed || retryAfter <= 0 {
		t.Fatalf("expected second call limited with retry hint")
	}

	now = now.Add(2 * time.Second)
	if allowed, _ := limiter.Allow("ip", rule); !allowed {
		t.Fatalf("expected refill after elapsed time")
	}
}

func TestRateLimitZeroRuleDisables(t *testing.T) {
	limiter := NewRateLimiter(nil)
	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("ip", RateLimitRule{}); !allowed {
			t.Fatalf("zero rule must not limit")
		}
	}
}

func TestRateLimitRetryAfterHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitRule{Rate: 0.5, Burst: 1}, limiter))
	r.POST("/triage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/triage", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if i == 1 {
			if resp.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", resp.Code)
			}
			if resp.Header().Get("Retry-After") == "" {
				t.Fatalf("expected Retry-After header")
			}
		}
	}
}
