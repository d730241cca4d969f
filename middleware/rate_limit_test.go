package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitByClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.Use(RateLimit(5, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after limit, got %d", w.Code)
	}
}

func TestRateLimitKeysByTenantWhenAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Both tenants share one client IP; the budget must still be per tenant.
	tenant := "tenant-a"
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant", tenant)
		c.Next()
	})
	router.Use(RateLimit(2, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	send := func() int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	send()
	send()
	if code := send(); code != http.StatusTooManyRequests {
		t.Errorf("Expected tenant-a exhausted with 429, got %d", code)
	}

	tenant = "tenant-b"
	if code := send(); code != http.StatusOK {
		t.Errorf("Expected tenant-b to have its own budget, got %d", code)
	}
}

func TestRateLimitDifferentIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(2, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	if !limiter.Allow("caller") {
		t.Error("Expected first request allowed")
	}
	if !limiter.Allow("caller") {
		t.Error("Expected second request allowed")
	}
	if limiter.Allow("caller") {
		t.Error("Expected third request rejected")
	}
	if !limiter.Allow("other") {
		t.Error("Expected other caller unaffected")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("caller") {
		t.Fatal("Expected first request allowed")
	}
	if limiter.Allow("caller") {
		t.Fatal("Expected second request rejected")
	}

	time.Sleep(20 * time.Millisecond)

	if !limiter.Allow("caller") {
		t.Error("Expected budget restored after window")
	}
}

func TestRateLimitRejectionBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(0, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Too many requests") {
		t.Errorf("Unexpected rejection body: %s", w.Body.String())
	}
}
