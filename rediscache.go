package pubfront

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/pubfront/logger"
)

const minRedisVersion = "5.0.0"

var redisVersionRe = regexp.MustCompile(`redis_version:((\d+\.)+\d+)`)

// RedisBackend is a CacheBackend shared by every replica of the site.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to rawURL (redis://...) and refuses servers older
// than 5.0.0.
func NewRedisBackend(ctx context.Context, rawURL, prefix string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("pubfront: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pubfront: ping redis: %w", err)
	}
	info, err := client.Info(ctx, "server").Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pubfront: redis server info: %w", err)
	}
	ver, err := parseRedisVersion(info)
	if err == nil {
		err = checkRedisVersion(ver, minRedisVersion)
	}
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info().Str("addr", opt.Addr).Str("version", ver).Msg("connected to redis")
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func parseRedisVersion(info string) (string, error) {
	m := redisVersionRe.FindStringSubmatch(info)
	if len(m) < 2 {
		return "", errors.New("pubfront: redis_version not found in server info")
	}
	return m[1], nil
}

func checkRedisVersion(serverVer, minVer string) error {
	serverV, err := goversion.NewVersion(serverVer)
	if err != nil {
		return fmt.Errorf("pubfront: redis version %q: %w", serverVer, err)
	}
	minV, err := goversion.NewVersion(minVer)
	if err != nil {
		return err
	}
	if serverV.LessThan(minV) {
		return fmt.Errorf("pubfront: redis server %s is too old, need %s or later", serverVer, minVer)
	}
	return nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the underlying connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
