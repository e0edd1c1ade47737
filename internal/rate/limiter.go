package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix           string        `koanf:"prefix"`
	EnableIPThrottle bool          `koanf:"ip_throttle"`
	MaxLoginAttempts int           `koanf:"max_login_attempts" validate:"gte=1"`
	LoginCooldown    time.Duration `koanf:"login_cooldown" validate:"gt=0"`
	MaxResetRequests int           `koanf:"max_reset_requests" validate:"gte=1"`
	ResetCooldown    time.Duration `koanf:"reset_cooldown" validate:"gt=0"`
}

// DefaultConfig allows five failed logins and three reset requests per
// fifteen minutes.
func DefaultConfig() Config {
	return Config{
		Prefix:           "authdemo",
		EnableIPThrottle: true,
		MaxLoginAttempts: 5,
		LoginCooldown:    15 * time.Minute,
		MaxResetRequests: 3,
		ResetCooldown:    15 * time.Minute,
	}
}

// Limiter enforces per-account and per-IP budgets using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports ErrRateLimited once the email or ip has used up its
// failed-login budget. It does not count as an attempt.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, l.key("login", email), l.config.MaxLoginAttempts); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, l.key("ip", ip), l.config.MaxLoginAttempts); err != nil {
			return err
		}
	}
	return nil
}

// IncrementLogin records a failed login.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	if _, err := l.incrementWithTTL(ctx, l.key("login", email), l.config.LoginCooldown); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		if _, err := l.incrementWithTTL(ctx, l.key("ip", ip), l.config.LoginCooldown); err != nil {
			return err
		}
	}
	return nil
}

// ResetLogin clears the account counter after a successful login. The IP
// counter is left to expire so one valid account cannot unlock an address
// that is guessing others.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key("login", email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// AllowReset counts a password-reset request and reports ErrRateLimited
// once the budget is exceeded.
func (l *Limiter) AllowReset(ctx context.Context, email string) error {
	count, err := l.incrementWithTTL(ctx, l.key("reset", email), l.config.ResetCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxResetRequests) {
		return ErrRateLimited
	}
	return nil
}

// LoginAttempts returns the failed-login counter for email.
func (l *Limiter) LoginAttempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.key("login", email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(kind, id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if l.config.Prefix == "" {
		return "rl:" + kind + ":" + id
	}
	return l.config.Prefix + ":rl:" + kind + ":" + id
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
