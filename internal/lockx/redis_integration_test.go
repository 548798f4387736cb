//go:build integration
// +build integration

package lockx

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedis_Lock(t *testing.T) {
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedis(rdb, "planeat:lock:", time.Second)
	unlock, err := l.Lock(ctx, "calday:2024-06-01")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "calday:2024-06-01")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock2, err := l.Lock(ctx, "calday:2024-06-01")
	require.NoError(t, err)
	unlock2()

	n, err := rdb.Exists(ctx, "planeat:lock:calday:2024-06-01").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
