package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Quota limits each client to a number of requests per window. Buckets start
// full and refill evenly over the window, so a client may spend the whole
// allowance at once and then regains one request every window/limit.
type Quota struct {
	limit   int
	window  time.Duration
	clients sync.Map // map[string]*quotaClient
	stop    chan struct{}
	once    sync.Once
}

type quotaClient struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

// NewQuota creates a quota of limit requests per window with background
// cleanup of idle clients. Call Stop() on shutdown.
func NewQuota(limit int, window, cleanupInterval time.Duration) *Quota {
	q := &Quota{
		limit:  limit,
		window: window,
		stop:   make(chan struct{}),
	}
	go q.cleanup(cleanupInterval)
	return q
}

// Stop terminates the background cleanup goroutine.
func (q *Quota) Stop() {
	q.once.Do(func() { close(q.stop) })
}

// Middleware rejects requests over the quota with 429 and a Retry-After header.
func (q *Quota) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := q.client(clientKey(r))

		res := c.limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (q *Quota) client(key string) *quotaClient {
	if v, ok := q.clients.Load(key); ok {
		c := v.(*quotaClient)
		c.touch()
		return c
	}

	every := q.window / time.Duration(max(q.limit, 1))
	v, _ := q.clients.LoadOrStore(key, &quotaClient{
		limiter:  rate.NewLimiter(rate.Every(every), q.limit),
		lastSeen: time.Now(),
	})
	c := v.(*quotaClient)
	c.touch()
	return c
}

func (c *quotaClient) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *quotaClient) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}

// cleanup drops clients idle for a full window; their bucket would be full again.
func (q *Quota) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case now := <-ticker.C:
			q.clients.Range(func(key, value any) bool {
				if value.(*quotaClient).idleSince(now) > q.window {
					q.clients.Delete(key)
				}
				return true
			})
		}
	}
}

// clientKey identifies the caller by host. RemoteAddr is expected to be
// rewritten by chi's RealIP middleware when running behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
