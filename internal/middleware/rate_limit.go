package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/pkg/circuit"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket refilling maxRequest tokens per
// window. It is local to one process.
type MemoryLimiter struct {
	maxRequest int
	window     time.Duration
	every      rate.Limit
	now        func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor

	stopCh   chan struct{}
	stopOnce sync.Once
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter starts a background sweep of idle keys; call Stop to end it.
func NewMemoryLimiter(maxRequest int, window time.Duration) *MemoryLimiter {
	if maxRequest < 1 {
		maxRequest = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	l := &MemoryLimiter{
		maxRequest: maxRequest,
		window:     window,
		every:      rate.Every(window / time.Duration(maxRequest)),
		now:        time.Now,
		visitors:   make(map[string]*visitor),
		stopCh:     make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.maxRequest)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	reservation := v.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Limit: l.maxRequest, RetryAfter: delay}, nil
	}

	remaining := int(math.Floor(v.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: l.maxRequest, Remaining: remaining}, nil
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(l.now())
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops keys idle for two windows; their buckets are full again.
func (l *MemoryLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > 2*l.window {
			delete(l.visitors, key)
		}
	}
}

// RedisLimiter is a fixed window counter shared by every replica.
type RedisLimiter struct {
	client     *redis.Client
	maxRequest int
	window     time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, maxRequest int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxRequest: maxRequest, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.client.IncrWindow(ctx, constants.CacheKeyRateLimit+key, l.window)
	if err != nil {
		return Decision{}, err
	}

	if count > int64(l.maxRequest) {
		return Decision{Limit: l.maxRequest, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Limit: l.maxRequest, Remaining: l.maxRequest - int(count)}, nil
}

// FailoverLimiter asks primary while its breaker is closed and fallback
// otherwise, so a Redis outage degrades to per-process limits.
type FailoverLimiter struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
}

var _ Limiter = (*FailoverLimiter)(nil)

func NewFailoverLimiter(primary, fallback Limiter, breaker *circuit.Breaker) *FailoverLimiter {
	return &FailoverLimiter{primary: primary, fallback: fallback, breaker: breaker}
}

func (l *FailoverLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	var decision Decision
	err := l.breaker.Execute(func() error {
		var err error
		decision, err = l.primary.Allow(ctx, key)
		return err
	})
	if err == nil {
		return decision, nil
	}

	logger.GetLogger().Warn("Primary rate limiter unavailable, using fallback",
		zap.String("client_ip", key),
		zap.String("breaker_state", l.breaker.State().String()),
		zap.Error(err),
	)
	return l.fallback.Allow(ctx, key)
}

// RateLimit limits requests per client IP. A limiter error lets the request
// through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		decision, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			logger.GetLogger().Error("Rate limiter unavailable",
				zap.String("client_ip", ip),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header(constants.HeaderXRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(constants.HeaderXRateLimitRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("user_agent", c.GetHeader(constants.HeaderUserAgent)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", decision.Limit),
				zap.Int("retry_after", retryAfter),
			)

			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
			abortWithError(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
