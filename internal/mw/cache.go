package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheKey derives the cache key for a request. Returning false sends the
// request straight to the handler.
type CacheKey func(c *gin.Context) (string, bool)

// PublicKey caches anonymous GETs by path and canonical query, so parameter
// order does not split entries. Requests carrying credentials are never cached.
func PublicKey(c *gin.Context) (string, bool) {
	if c.Request.Method != http.MethodGet || c.GetHeader("Authorization") != "" || c.Query("token") != "" {
		return "", false
	}
	key := c.Request.URL.Path
	if q := c.Request.URL.Query(); len(q) > 0 {
		key += "?" + q.Encode()
	}
	return key, true
}

type cachedPage struct {
	status int
	header http.Header
	body   []byte
}

// teeWriter copies the response body while passing it through.
type teeWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated requests from store for ttl. Only 2xx responses are
// kept. Responses are tagged X-Cache: HIT or MISS.
func Cache(store *cache.Cache, ttl time.Duration, keyOf CacheKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := keyOf(c)
		if !ok {
			c.Next()
			return
		}

		if v, found := store.Get(key); found {
			page := v.(cachedPage)
			h := c.Writer.Header()
			for k, vals := range page.header {
				h[k] = vals
			}
			h.Set("X-Cache", "HIT")
			c.Writer.WriteHeader(page.status)
			_, _ = c.Writer.Write(page.body)
			c.Abort()
			return
		}

		c.Writer.Header().Set("X-Cache", "MISS")
		tee := teeWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = tee
		c.Next()

		status := tee.Status()
		if status < 200 || status >= 300 {
			return
		}
		header := tee.Header().Clone()
		header.Del("X-Cache")
		store.Set(key, cachedPage{status: status, header: header, body: tee.buf.Bytes()}, ttl)
	}
}
