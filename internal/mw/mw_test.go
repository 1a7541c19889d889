package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2, "X-Forwarded-For"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("2.2.2.2"), "limits are per client")
}

func TestCache(t *testing.T) {
	var hits int32
	r := gin.New()
	r.GET("/meta", Cache(cache.New(time.Minute, time.Minute), time.Minute, PublicKey), func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		if i == 0 {
			assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
		} else {
			assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		}
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	req := httptest.NewRequest(http.MethodGet, "/meta", nil)
	req.Header.Set("Authorization", "Bearer x")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "credentialed requests bypass the cache")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta?token=abc", nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "query tokens bypass the cache")
}

func TestCache_QueryOrderSharesEntry(t *testing.T) {
	var hits int32
	r := gin.New()
	r.GET("/meta", Cache(cache.New(time.Minute, time.Minute), time.Minute, PublicKey), func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.String(http.StatusOK, "ok")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta?a=1&b=2", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta?b=2&a=1", nil))

	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestCache_SkipsErrors(t *testing.T) {
	var hits int32
	r := gin.New()
	r.GET("/vapid", Cache(cache.New(time.Minute, time.Minute), time.Minute, PublicKey), func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "off"})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vapid", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestSession(t *testing.T) {
	src := datasource.NewMemorySource(datasource.DemoFixtures(time.Now()))
	m := session.NewManager(src, src, time.Hour)
	sess, err := m.Login(context.Background(), "student@example.com")
	require.NoError(t, err)

	r := gin.New()
	r.Use(Session(m))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentSession(c).User().ID) })
	r.POST("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentSession(c).User().ID) })

	tests := []struct {
		name   string
		method string
		target string
		auth   string
		code   int
	}{
		{"bearer header", http.MethodGet, "/me", "Bearer " + sess.Token, http.StatusOK},
		{"lower-case scheme", http.MethodGet, "/me", "bearer " + sess.Token, http.StatusOK},
		{"query token on GET", http.MethodGet, "/me?token=" + sess.Token, "", http.StatusOK},
		{"query token on POST", http.MethodPost, "/me?token=" + sess.Token, "", http.StatusUnauthorized},
		{"missing token", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/me", "Bearer nope", http.StatusUnauthorized},
		{"basic auth", http.MethodGet, "/me", "Basic abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "student-1", w.Body.String())
			}
		})
	}
}
