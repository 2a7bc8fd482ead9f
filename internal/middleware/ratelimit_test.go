package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		rl := NewRateLimiter()
		for i := 0; i < 5; i++ {
			allowed, _, _ := rl.Check("1.2.3.4", 5)
			assert.True(t, allowed)
		}
	})

	t.Run("denies requests over the limit", func(t *testing.T) {
		rl := NewRateLimiter()
		for i := 0; i < 3; i++ {
			rl.Check("1.2.3.4", 3)
		}
		allowed, remaining, _ := rl.Check("1.2.3.4", 3)
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter()
		for i := 0; i < 3; i++ {
			rl.Check("1.2.3.4", 3)
		}
		allowed, _, _ := rl.Check("5.6.7.8", 3)
		assert.True(t, allowed)
	})
}

func TestIPRateLimitMiddleware(t *testing.T) {
	m := NewIPRateLimitMiddleware(2)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, http.StatusOK, get().Code)

	rec := get()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
}
