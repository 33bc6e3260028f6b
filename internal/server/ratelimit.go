package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ayusman/fingerspell/internal/server/api"
)

// idleEvict is how long a client's bucket survives without requests. Sweeps
// run at most once per idleEvict.
const idleEvict = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	bucket    map[string]*visitor
	rate      rate.Limit
	burstSize int
	mutex     sync.Mutex
	log       logrus.FieldLogger

	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(reqRate float64, burstSize int, log logrus.FieldLogger) *rateLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	return &rateLimiter{
		bucket:    make(map[string]*visitor),
		rate:      rate.Limit(reqRate),
		burstSize: burstSize,
		log:       log,
		now:       time.Now,
	}
}

// limiterFor returns the bucket for ip, creating it on first use. Buckets
// idle for idleEvict are dropped; a returning client starts with a full one.
func (r *rateLimiter) limiterFor(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= idleEvict {
		for k, v := range r.bucket {
			if now.Sub(v.lastSeen) >= idleEvict {
				delete(r.bucket, k)
			}
		}
		r.lastSweep = now
	}

	v, ok := r.bucket[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.bucket[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (r *rateLimiter) clients() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.bucket)
}

// Wrap rejects requests with 429 once the client's bucket is empty.
func (r *rateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := clientIP(req)
		if !r.limiterFor(ip).Allow() {
			r.log.WithField("ip", ip).Warn("too many frame requests")
			api.WriteError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
