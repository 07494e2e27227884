package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labcatalog/catalog-sync/internal/config"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(_ context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForDatabase_RetriesUntilReady(t *testing.T) {
	t.Parallel()

	p := &flakyPinger{failures: 2}
	err := waitForDatabase(context.Background(), p, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestWaitForDatabase_GivesUp(t *testing.T) {
	t.Parallel()

	p := &flakyPinger{failures: 1 << 30}
	err := waitForDatabase(context.Background(), p, 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestWaitForDatabase_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &flakyPinger{failures: 1 << 30}
	err := waitForDatabase(ctx, p, time.Minute)
	require.Error(t, err)
}

func TestNewPool_InvalidConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewPool(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("missing password", func(t *testing.T) {
		t.Setenv(config.EnvDatabasePassword, "")
		_, err := NewPool(context.Background(), &config.DatabaseConfig{
			Host: "localhost", Port: 5432, User: "u", Database: "d",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection string")
	})

	t.Run("invalid lifetime", func(t *testing.T) {
		t.Setenv(config.EnvDatabasePassword, "pw")
		_, err := NewPool(context.Background(), &config.DatabaseConfig{
			Host: "localhost", Port: 5432, User: "u", Database: "d", ConnMaxLifetime: "forever",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connMaxLifetime")
	})
}
