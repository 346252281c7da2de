package fakeapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// fixedWindowLimiter allows limit requests per key in each window.
type fixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*window
	now     func() time.Time
}

type window struct {
	start time.Time
	hits  int
}

func newFixedWindowLimiter(limit int, every time.Duration) *fixedWindowLimiter {
	return &fixedWindowLimiter{limit: limit, window: every, buckets: make(map[string]*window), now: time.Now}
}

// allow records a hit for key and reports whether it fits, and if not, how
// long until the window resets.
func (l *fixedWindowLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		b = &window{start: now}
		l.buckets[key] = b
	}
	if b.hits >= l.limit {
		return false, b.start.Add(l.window).Sub(now)
	}
	b.hits++
	return true, 0
}

func (l *fixedWindowLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
			writeMessage(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
