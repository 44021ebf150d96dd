package middleware

import (
	"bytes"
	"net/http"
	"time"

	apperrors "gameden/pkg/errors"
	httputil "gameden/pkg/http"

	"github.com/patrickmn/go-cache"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	inFlight   bool
}

// IdempotencyStore keeps responses of completed requests for a TTL. Begin
// claims a key atomically so concurrent retries cannot both run.
type IdempotencyStore struct {
	cache *cache.Cache
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Begin returns the cached response for key, or claims the key and returns
// nil, true. A key claimed by a request still running returns nil, false.
func (s *IdempotencyStore) Begin(key string) (*CachedResponse, bool) {
	if err := s.cache.Add(key, &CachedResponse{inFlight: true}, cache.DefaultExpiration); err == nil {
		return nil, true
	}
	v, found := s.cache.Get(key)
	if !found {
		// expired between Add and Get
		return s.Begin(key)
	}
	cached := v.(*CachedResponse)
	if cached.inFlight {
		return nil, false
	}
	return cached, true
}

func (s *IdempotencyStore) Complete(key string, response *CachedResponse) {
	s.cache.Set(key, response, cache.DefaultExpiration)
}

// Abandon frees the key so a failed request can be retried.
func (s *IdempotencyStore) Abandon(key string) {
	s.cache.Delete(key)
}

func (s *IdempotencyStore) Flush() {
	s.cache.Flush()
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	if rc.statusCode == 0 {
		rc.statusCode = http.StatusOK
	}
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key seen before. Only 2xx responses are stored.
func Idempotency(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + " " + r.URL.Path + " " + key

			cached, ok := store.Begin(key)
			if !ok {
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is still in progress"))
				return
			}
			if cached != nil {
				replayCachedResponse(w, cached)
				return
			}

			capture := &responseCapture{
				ResponseWriter: w,
				body:           &bytes.Buffer{},
			}
			defer func() {
				if capture.statusCode < 200 || capture.statusCode >= 300 {
					store.Abandon(key)
					return
				}
				store.Complete(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			}()
			next.ServeHTTP(capture, r)
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
