package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"tourly/pkg/logger"

	"golang.org/x/time/rate"
)

// ClientRateLimiter keeps a token bucket per client address with periodic
// cleanup of idle buckets. This is transport backpressure only; the daily
// booking quota is enforced inside the tour store.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	log     *logger.Logger
	stopCh  chan struct{}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewClientRateLimiter(rps float64, burst int, log *logger.Logger) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		clients: make(map[string]*clientBucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *ClientRateLimiter) Allow(clientKey string) bool {
	if clientKey == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.clients[clientKey]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[clientKey] = bucket
	}
	bucket.lastSeen = time.Now()
	return bucket.limiter.Allow()
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, bucket := range rl.clients {
				if time.Since(bucket.lastSeen) > rl.idleTTL {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	close(rl.stopCh)
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddress(r)

			if !limiter.Allow(client) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestID(r.Context()),
					"client", client,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"RATE_LIMIT","message":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
