package cache

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"clinvarminer/internal/logging"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// PageCache caches successful GET responses by URL for clients that accept gzip
type PageCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
}

// NewPageCache creates a page cache. A zero ttl never expires pages.
func NewPageCache(backend Backend, ttl time.Duration) *PageCache {
	return &PageCache{backend: backend, ttl: ttl}
}

// Clear drops every cached page
func (c *PageCache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// Close releases the backend
func (c *PageCache) Close() error {
	return c.backend.Close()
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if coding == "gzip" || coding == "*" {
			return true
		}
	}
	return false
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

// fill renders a page once per key, no matter how many requests wait for it.
// Only 200 responses become cached pages; anything else is replayed as recorded.
// The render is shared, so it runs detached from the cancellation of whichever
// request happened to start it.
func (c *PageCache) fill(key string, next http.Handler, r *http.Request) (*recorder, *Page, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		r := r.WithContext(context.WithoutCancel(r.Context()))
		rec := newRecorder()
		next.ServeHTTP(rec, r)
		if rec.status != http.StatusOK {
			return &filled{rec: rec}, nil
		}

		page, err := NewPage(rec.status, rec.header, rec.body.Bytes())
		if err != nil {
			return nil, err
		}
		data, err := page.encode()
		if err != nil {
			return nil, err
		}
		if err := c.backend.Set(r.Context(), key, data, c.ttl); err != nil {
			logging.FromContext(r.Context()).WithError(err).Warn("[Cache] failed to store page")
		}
		return &filled{rec: rec, page: page}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	f := v.(*filled)
	return f.rec, f.page, nil
}

type filled struct {
	rec  *recorder
	page *Page
}

// Middleware serves cached pages and stores fresh ones
func (c *PageCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || !acceptsGzip(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := r.URL.RequestURI()
		logger := logging.FromContext(ctx).WithField("key", key)

		data, ok, err := c.backend.Get(ctx, key)
		if err != nil {
			logger.WithError(err).Warn("[Cache] lookup failed")
		}
		if ok {
			page, err := decodePage(data)
			if err == nil {
				logger.Debug("[Cache] hit")
				page.Write(w, r)
				return
			}
			logger.WithError(err).Warn("[Cache] dropping entry")
			_ = c.backend.Delete(ctx, key)
		}

		rec, page, err := c.fill(key, next, r)
		if err != nil {
			logger.WithError(err).Error("[Cache] failed to render page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		logger.WithFields(log.Fields{"status": rec.status, "cached": page != nil}).Debug("[Cache] miss")
		if page != nil {
			page.Write(w, r)
			return
		}
		rec.replay(w)
	})
}

// recorder buffers a response so it can be compressed and cached
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
	wrote  bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wrote {
		return
	}
	r.status = code
	r.wrote = true
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.body.Write(b)
}

func (r *recorder) replay(w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range r.header {
		h[k] = append([]string(nil), vs...)
	}
	w.WriteHeader(r.status)
	w.Write(r.body.Bytes())
}
