package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SignupThrottle counts confirmation-code requests per key inside a fixed window.
type SignupThrottle interface {
	// Allow records one attempt and reports whether it is within limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type signupThrottle struct {
	client *redis.Client
	log    *zap.Logger
}

// NewSignupThrottle returns a Redis-backed throttle. A nil client yields a throttle that allows everything.
func NewSignupThrottle(client *redis.Client, log *zap.Logger) SignupThrottle {
	return &signupThrottle{
		client: client,
		log:    log.With(zap.String("repository", "signup_throttle")),
	}
}

func (t *signupThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if t == nil || t.client == nil || limit <= 0 {
		return true, nil
	}

	redisKey := fmt.Sprintf("signup:throttle:%s", strings.ToLower(key))

	// SET NX EX opens the window and INCR keeps its TTL; MULTI keeps the pair together
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		t.log.Error("Failed to increment throttle counter",
			zap.Error(err),
			zap.String("key", redisKey),
		)
		return false, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	count := incr.Val()

	if count > int64(limit) {
		t.log.Warn("Signup throttled",
			zap.String("key", redisKey),
			zap.Int64("count", count),
			zap.Int("limit", limit),
		)
		return false, nil
	}

	return true, nil
}
