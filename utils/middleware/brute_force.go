package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/utils/cache"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

// BruteForceProtection locks out clients after repeated failed logins.
// Counters live in Redis; a nil receiver or a Redis outage disables the
// protection rather than blocking logins.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	if redisCache == nil {
		return nil
	}
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

// LockoutFor maps a failure count to the lockout it triggers.
func LockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

func lockKey(subject string) string {
	return fmt.Sprintf("brute_force:lock:%s", subject)
}

func attemptKey(subject string) string {
	return fmt.Sprintf("brute_force:attempts:%s", subject)
}

// CheckLockout rejects requests from a locked IP before the handler runs.
func (b *BruteForceProtection) CheckLockout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil {
			return c.Next()
		}

		key := lockKey("ip:" + c.IP())
		locked, err := b.redisCache.Exists(c.UserContext(), key)
		if err != nil {
			log.Warnf("brute force check skipped: %v", err)
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.redisCache.TTL(c.UserContext(), key)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}

		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// IsEmailLocked reports whether an account is locked regardless of IP.
func (b *BruteForceProtection) IsEmailLocked(ctx context.Context, email string) bool {
	if b == nil || email == "" {
		return false
	}
	locked, err := b.redisCache.Exists(ctx, lockKey("email:"+strings.ToLower(email)))
	return err == nil && locked
}

// RecordFailedAttempt counts a failure against both the IP and the email.
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip, email string) {
	if b == nil {
		return
	}
	for _, subject := range []string{"ip:" + ip, "email:" + strings.ToLower(email)} {
		attempts, err := b.redisCache.Increment(ctx, attemptKey(subject))
		if err != nil {
			log.Warnf("brute force counter unavailable: %v", err)
			return
		}
		if attempts == 1 {
			_ = b.redisCache.Expire(ctx, attemptKey(subject), 15*time.Minute)
		}
		if d := LockoutFor(attempts); d > 0 {
			if err := b.redisCache.Set(ctx, lockKey(subject), "locked", d); err != nil {
				log.Warnf("brute force lock failed: %v", err)
			}
		}
	}
}

// RecordSuccessfulAttempt clears counters and locks after a good login.
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip, email string) {
	if b == nil {
		return
	}
	for _, subject := range []string{"ip:" + ip, "email:" + strings.ToLower(email)} {
		_ = b.redisCache.Delete(ctx, attemptKey(subject), lockKey(subject))
	}
}
