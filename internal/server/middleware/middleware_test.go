package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/scrawl/internal/auth"
	"github.com/gosuda/scrawl/internal/server/middleware"
)

const testSecret = "test-secret-key-very-long-and-secure"

// nextRecorder records whether the wrapped handler ran and with what context.
type nextRecorder struct {
	called bool
	userID uuid.UUID
	hasID  bool
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.userID, n.hasID = middleware.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	t.Parallel()

	t.Run("valid bearer token passes with user in context", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		token, err := auth.IssueAccessToken(testSecret, userID, time.Minute)
		require.NoError(t, err)

		next := &nextRecorder{}
		h := middleware.Auth(testSecret)(next.handler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, next.called)
		require.True(t, next.hasID)
		assert.Equal(t, userID, next.userID)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		t.Parallel()

		next := &nextRecorder{}
		h := middleware.Auth(testSecret)(next.handler())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, next.called)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueRefreshToken(testSecret, uuid.New(), time.Minute)
		require.NoError(t, err)

		next := &nextRecorder{}
		h := middleware.Auth(testSecret)(next.handler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		t.Parallel()

		token, err := auth.IssueAccessToken("another-secret-also-long-enough!", uuid.New(), time.Minute)
		require.NoError(t, err)

		next := &nextRecorder{}
		h := middleware.Auth(testSecret)(next.handler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("burst then 429 for the same user", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		h := middleware.RateLimit(context.Background(), 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, userID))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("no user in context skips limiting", func(t *testing.T) {
		t.Parallel()

		h := middleware.RateLimit(context.Background(), 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for range 5 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	h := middleware.RateLimitByIP(context.Background(), 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different IP has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}
