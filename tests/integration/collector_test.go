//go:build integration

package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/frontier-tools/solarmap/internal/testutil"
	"github.com/frontier-tools/solarmap/pkg/collector"
	"github.com/frontier-tools/solarmap/pkg/gateway"
	"github.com/frontier-tools/solarmap/pkg/sink"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "get Redis endpoint")

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})
	require.NoError(t, client.Ping(ctx).Err(), "connect to Redis")

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

// newCachedCollector wires a collector against the mock through a
// Redis-caching gateway client, with no wall-clock page delay.
func newCachedCollector(t *testing.T, baseURL string, redisClient *redis.Client) *collector.Collector {
	t.Helper()

	gatewayCfg := gateway.DefaultConfig(baseURL, "solarmap-integration/0.0.0")
	gatewayCfg.Redis = redisClient
	gatewayCfg.Retry = gateway.RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	client, err := gateway.New(gatewayCfg)
	require.NoError(t, err)

	collectorCfg := collector.DefaultConfig()
	collectorCfg.Sleep = func(context.Context, time.Duration) error { return nil }

	col, err := collector.New(client, collectorCfg)
	require.NoError(t, err)

	return col
}

func TestIntegration_CachedRuns(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockGateway(testutil.MakeSystems(250))
	defer mock.Close()
	mock.SetHeader("ETag", `"run-v1"`)
	mock.SetHeader("Expires", time.Now().Add(10*time.Minute).UTC().Format(http.TimeFormat))

	ctx := context.Background()

	col := newCachedCollector(t, mock.URL(), redisClient)

	first, err := col.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, first.Len())
	assert.Equal(t, 3, mock.RequestCount())
	assert.Equal(t, 0, mock.NotModifiedCount(), "first run is uncached")

	// Second run revalidates each cached page and gets 304s back
	second, err := col.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, second.Len())
	assert.True(t, second.Equal(first), "cached run must produce the same mapping")
	assert.Equal(t, 3, mock.NotModifiedCount(), "all pages served from cache")
}

func TestIntegration_FullRunPersisted(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockGateway(testutil.MakeSystems(120))
	defer mock.Close()
	mock.SetServerLimit(50)

	ctx := context.Background()

	col := newCachedCollector(t, mock.URL(), redisClient)

	mapping, err := col.Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, 120, mapping.Len())

	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, sink.NewFileSink(path).Write(ctx, mapping))

	loaded, err := sink.Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(mapping), "file round trip must preserve the mapping")
}
