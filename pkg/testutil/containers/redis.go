//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"hackhub/internal/platform/config"
	platformredis "hackhub/internal/platform/redis"
)

// RedisContainer is a throwaway revocation store. It connects through
// platformredis.Dial so suites exercise the same pool settings as the server.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Conn      *platformredis.Client
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start revocation store: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("revocation store url: %v", err)
	}

	conn, err := platformredis.Dial(ctx, config.RedisConfig{
		URL:          url,
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("dial revocation store: %v", err)
	}

	return &RedisContainer{Container: container, URL: url, Conn: conn}
}

func (r *RedisContainer) Client() *goredis.Client {
	return r.Conn.Redis()
}

// Reset forgets every revoked token id so each test starts from an empty list.
func (r *RedisContainer) Reset(ctx context.Context) error {
	return r.Conn.Redis().FlushDB(ctx).Err()
}
