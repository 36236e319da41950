package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/time/rate"
)

// limiter keeps one token bucket per client address.
// A nil *limiter allows everything.
type limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

const staleBucket = 10 * time.Minute

func newLimiter(perSecond, burst int) *limiter {
	if perSecond <= 0 {
		return nil
	}
	return &limiter{
		limit:   rate.Limit(perSecond),
		burst:   max(burst, 1),
		buckets: make(map[string]*bucket),
		swept:   time.Now(),
	}
}

// allow reports whether key may proceed now, and otherwise how long to wait.
func (l *limiter) allow(key string, now time.Time) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > staleBucket {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > staleBucket {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// limitMutations returns a middleware that answers 429 to clients sending
// mutating requests faster than l allows. Reads are never limited.
func limitMutations(l *limiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		switch ctx.Method() {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(ctx)
			return
		}

		ok, retryAfter := l.allow(clientKey(ctx.RemoteAddr()), time.Now())
		if ok {
			next(ctx)
			return
		}

		ctx.SetHeader("Retry-After", strconv.Itoa(int(max(retryAfter.Round(time.Second), time.Second).Seconds())))
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetStatus(http.StatusTooManyRequests)
		_, _ = ctx.BodyWriter().Write([]byte(`{"error":"Too many requests"}` + "\n"))
	}
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
