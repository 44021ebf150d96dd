package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "gameden/pkg/errors"
	httputil "gameden/pkg/http"
	"gameden/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const PhoneHeader = "X-Phone-Number"

type KeyExtractor func(r *http.Request) string

// ClientRateLimiter keeps one token bucket per client key. Buckets idle for
// longer than idleTTL are dropped.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

func NewClientRateLimiter(rps float64, burst int, idleTTL time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: cache.New(idleTTL, idleTTL),
		r:        rate.Limit(rps),
		b:        burst,
	}
}

func (l *ClientRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		l.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.limiters.SetDefault(key, lim)
	return lim
}

func (l *ClientRateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// ClientKey identifies callers by their X-Phone-Number header, falling back
// to the remote IP.
func ClientKey(r *http.Request) string {
	if phone := r.Header.Get(PhoneHeader); phone != "" {
		return "phone:" + phone
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func RateLimit(limiter *ClientRateLimiter, extract KeyExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if extract == nil {
		extract = ClientKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extract(r)
			if key == "" || limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("Rate limit exceeded",
				"request_id", RequestIDFromContext(r.Context()),
				"client", key,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			_ = httputil.WriteError(w, apperrors.New("RATE_LIMITED", "Rate limit exceeded", http.StatusTooManyRequests))
		})
	}
}
