package testutil

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis test configuration constants
const (
	redisCtxTimeout                = 10 * time.Second
	redisContainerStartupTimeout   = 60 * time.Second
	redisContainerTerminateTimeout = 5 * time.Second
	redisContainerMemoryLimit      = 128 * 1024 * 1024 // 128MB
	redisTestPoolSize              = 10
)

var (
	sharedRedis   *SharedRedisContainer
	sharedRedisMu sync.Mutex
)

// SharedRedisContainer is a Redis container reused by every test in the binary
type SharedRedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// GetSharedRedisContainer starts the container on first use and replaces it
// if it stopped in the meantime.
func GetSharedRedisContainer(ctx context.Context) (*SharedRedisContainer, error) {
	sharedRedisMu.Lock()
	defer sharedRedisMu.Unlock()

	if sharedRedis != nil {
		state, err := sharedRedis.Container.State(ctx)
		if err == nil && state.Running {
			return sharedRedis, nil
		}
		terminateRedis(sharedRedis)
		sharedRedis = nil
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), redisContainerStartupTimeout)
	defer cancel()

	cont, err := startRedisContainer(startupCtx)
	if err != nil {
		return nil, err
	}
	sharedRedis = cont
	return sharedRedis, nil
}

func startRedisContainer(ctx context.Context) (*SharedRedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Memory = redisContainerMemoryLimit
			hc.MemorySwap = redisContainerMemoryLimit
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(redisContainerStartupTimeout),
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(redisContainerStartupTimeout),
		),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := cont.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &SharedRedisContainer{
		Container: cont,
		Addr:      net.JoinHostPort(host, port.Port()),
	}, nil
}

func terminateRedis(c *SharedRedisContainer) {
	if c == nil || c.Container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisContainerTerminateTimeout)
	defer cancel()
	_ = c.Container.Terminate(ctx)
}

// SetupTestRedis returns a client for the shared container. Keys are not
// flushed between tests; use SetupTestRedisWithPrefix to isolate them.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), redisCtxTimeout)
	defer cancel()

	cont, err := GetSharedRedisContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared Redis container: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cont.Addr,
		PoolSize: redisTestPoolSize,
	})

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		_ = client.Close()
		t.Fatalf("Failed to ping Redis: %v", pingErr)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// SetupTestRedisWithPrefix returns a client and a key prefix unique to the
// test. Keys under the prefix are deleted on cleanup.
func SetupTestRedisWithPrefix(t *testing.T) (*redis.Client, string) {
	t.Helper()

	client := SetupTestRedis(t)
	prefix := "test:" + strings.ReplaceAll(t.Name(), " ", "_") + ":"

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), redisCtxTimeout)
		defer cancel()

		iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			_ = client.Del(ctx, iter.Val()).Err()
		}
	})

	return client, prefix
}

// CleanupSharedRedisContainer terminates the shared Redis container.
func CleanupSharedRedisContainer() {
	sharedRedisMu.Lock()
	defer sharedRedisMu.Unlock()

	terminateRedis(sharedRedis)
	sharedRedis = nil
}
