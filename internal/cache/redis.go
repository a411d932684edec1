package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// otpTTL bounds how long a password reset code stays redeemable.
const otpTTL = 10 * time.Minute

// leaderboardTTL keeps the cached leaderboard fresh enough while absorbing
// read bursts.
const leaderboardTTL = 30 * time.Second

// ErrNotFound is returned when a requested key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

func otpKey(email string) string {
	return "pwreset:" + email
}

// StoreResetOTP saves a password reset code for email, replacing any prior
// one. The code expires on its own after otpTTL.
func StoreResetOTP(ctx context.Context, email, otp string) error {
	return Rdb.Set(ctx, otpKey(email), otp, otpTTL).Err()
}

// CheckResetOTP verifies the code for email and consumes it on success, so
// a code redeems at most once.
func CheckResetOTP(ctx context.Context, email, otp string) (bool, error) {
	stored, err := Rdb.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != otp {
		return false, nil
	}
	if err := Rdb.Del(ctx, otpKey(email)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// CacheLeaderboard stores the rendered leaderboard JSON.
func CacheLeaderboard(ctx context.Context, payload []byte) error {
	return Rdb.Set(ctx, "leaderboard:top", payload, leaderboardTTL).Err()
}

// CachedLeaderboard returns the cached leaderboard JSON, or ErrNotFound.
func CachedLeaderboard(ctx context.Context) ([]byte, error) {
	data, err := Rdb.Get(ctx, "leaderboard:top").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
