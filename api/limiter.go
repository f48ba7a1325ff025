package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// hitStore keeps the timestamps of recent hits per key.
type hitStore interface {
	// recent drops hits at or before cutoff and returns the rest, oldest first.
	recent(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error)
	add(ctx context.Context, key string, at, expires time.Time) error
	// addIfBelow atomically drops hits at or before cutoff and records a hit at at
	// when fewer than max remain.
	addIfBelow(ctx context.Context, key string, at, cutoff, expires time.Time, max int) (bool, error)
	close()
}

// RateLimiter counts hits per client IP over a sliding window.
type RateLimiter struct {
	store  hitStore
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates an in-process RateLimiter that allows max hits per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return newRateLimiter(newMemoryStore(window), max, window)
}

func newRateLimiter(store hitStore, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, max: max, window: window, now: time.Now}
}

// Close releases the backing store.
func (l *RateLimiter) Close() {
	l.store.close()
}

// hits returns the hits of key inside the current window. Store failures are logged
// and count as no hits.
func (l *RateLimiter) hits(ctx context.Context, key string) []time.Time {
	hits, err := l.store.recent(ctx, key, l.now().Add(-l.window))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Rate limiter store unavailable")
		return nil
	}
	return hits
}

func (l *RateLimiter) record(ctx context.Context, key string) {
	now := l.now()
	if err := l.store.add(ctx, key, now, now.Add(l.window)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Rate limiter store unavailable")
	}
}

// Allow records a hit for key and reports whether it is within the limit.
// Rejected hits are not recorded.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	now := l.now()
	ok, err := l.store.addIfBelow(ctx, key, now, now.Add(-l.window), now.Add(l.window), l.max)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Rate limiter store unavailable")
		return true
	}
	return ok
}

// Check reports whether key is within the limit without recording a hit.
func (l *RateLimiter) Check(ctx context.Context, key string) bool {
	return len(l.hits(ctx, key)) < l.max
}

// Record registers a hit, e.g. a failed login, for key.
func (l *RateLimiter) Record(ctx context.Context, key string) {
	l.record(ctx, key)
}

// Remaining returns how many hits key has left in the current window.
func (l *RateLimiter) Remaining(ctx context.Context, key string) int {
	if n := l.max - len(l.hits(ctx, key)); n > 0 {
		return n
	}
	return 0
}

// RetryAfter returns how long until the oldest hit of key leaves the window.
func (l *RateLimiter) RetryAfter(ctx context.Context, key string) time.Duration {
	hits := l.hits(ctx, key)
	if len(hits) == 0 {
		return 0
	}
	return hits[0].Add(l.window).Sub(l.now())
}

// memoryStore keeps hits in process memory and prunes idle keys every window.
type memoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	stop chan struct{}
	once sync.Once
}

func newMemoryStore(window time.Duration) *memoryStore {
	s := &memoryStore{
		hits: make(map[string][]time.Time),
		stop: make(chan struct{}),
	}
	go s.cleanup(window)
	return s
}

func (s *memoryStore) cleanup(window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key := range s.hits {
				s.prune(key, now.Add(-window))
			}
			s.mu.Unlock()
		}
	}
}

// prune drops hits at or before cutoff. Callers hold mu.
func (s *memoryStore) prune(key string, cutoff time.Time) []time.Time {
	hits := s.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(s.hits, key)
		return nil
	}
	s.hits[key] = kept
	return kept
}

func (s *memoryStore) recent(_ context.Context, key string, cutoff time.Time) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.prune(key, cutoff)
	return append([]time.Time(nil), kept...), nil
}

func (s *memoryStore) add(_ context.Context, key string, at, _ time.Time) error {
	s.mu.Lock()
	s.hits[key] = append(s.hits[key], at)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) addIfBelow(_ context.Context, key string, at, cutoff, _ time.Time, max int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prune(key, cutoff)) >= max {
		return false, nil
	}
	s.hits[key] = append(s.hits[key], at)
	return true, nil
}

func (s *memoryStore) close() {
	s.once.Do(func() { close(s.stop) })
}

// clientIP returns the request's remote address without the port. RealIP runs first,
// so proxied requests carry the forwarded address here.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitError sets the standard rate limit headers and returns the 429 error.
func rateLimitError(w http.ResponseWriter, r *http.Request, l *RateLimiter, ip, message string) error {
	retry := l.RetryAfter(r.Context(), ip)
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second)/time.Second)))
	w.Header().Set("RateLimit-Limit", strconv.Itoa(l.max))
	w.Header().Set("RateLimit-Remaining", "0")
	return errs.NewRateLimitError(message, retry)
}

// limitByIP rejects requests beyond the limiter's budget with a 429 carrying message.
func limitByIP(l *RateLimiter, responder Responder, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.Allow(r.Context(), ip) {
				responder.WriteError(w, rateLimitError(w, r, l, ip, message))
				return
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(l.max))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(l.Remaining(r.Context(), ip)))
			next.ServeHTTP(w, r)
		})
	}
}
