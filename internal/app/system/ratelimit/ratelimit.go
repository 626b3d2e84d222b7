// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a per-key token bucket: each key may make limit requests per
// duration, refilling continuously. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    int
	duration time.Duration
	idle     time.Duration // entries unused this long are dropped
	stop     chan struct{}
	once     sync.Once
	now      func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter and starts its cleanup loop. Call Stop to end it.
func New(limit int, duration time.Duration) *Limiter {
	l := newLimiter(limit, duration)
	go l.cleanupLoop()
	return l
}

func newLimiter(limit int, duration time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if duration <= 0 {
		duration = time.Minute
	}
	return &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    limit,
		duration: duration,
		idle:     duration * 2,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
}

func (l *Limiter) get(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.duration / time.Duration(l.limit))
		b = &bucket{lim: rate.NewLimiter(every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// Allow reports whether a request for key may proceed and consumes a token
// if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	return l.get(key, now).lim.AllowN(now, 1)
}

// Remaining returns the whole tokens currently available for key.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		return l.limit
	}
	n := int(b.lim.TokensAt(l.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset clears the state for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Stop ends the cleanup loop.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// ClientIP extracts the client IP, preferring the first X-Forwarded-For hop,
// then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Messages shown when a login is throttled.
const (
	MsgTooManyFromIP     = "Too many login attempts. Please wait a minute before trying again."
	MsgTooManyForAccount = "Too many login attempts for this account. Please wait a few minutes."
)

const (
	defaultIPLimit        = 10
	defaultEmailWindowMul = 5
)

// LoginLimiter throttles login attempts per client IP and per email.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows ipLimit attempts per window per IP, and half that
// per email over five windows.
func NewLoginLimiter(ipLimit int, window time.Duration) *LoginLimiter {
	if ipLimit <= 0 {
		ipLimit = defaultIPLimit
	}
	if window <= 0 {
		window = time.Minute
	}
	emailLimit := ipLimit / 2
	if emailLimit < 1 {
		emailLimit = 1
	}
	return &LoginLimiter{
		ipLimiter:    New(ipLimit, window),
		emailLimiter: New(emailLimit, defaultEmailWindowMul*window),
	}
}

// Check reports whether the attempt may proceed, with a user-facing reason
// when it may not.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := emailKey(email); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, MsgTooManyForAccount
		}
	}
	return true, ""
}

// ResetEmail clears the per-email state after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.emailLimiter.Reset(key)
	}
}

// Stop ends both cleanup loops.
func (ll *LoginLimiter) Stop() {
	ll.ipLimiter.Stop()
	ll.emailLimiter.Stop()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
