package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAggregatesChecks(t *testing.T) {
	m := New(time.Minute, nil)
	m.Add("postgresql", func(context.Context) error { return nil })
	m.Add("redis", func(context.Context) error { return errors.New("connection refused") })

	status := m.Refresh(context.Background())

	assert.False(t, status.Healthy)
	assert.True(t, status.Components["postgresql"].Online)
	assert.False(t, status.Components["redis"].Online)
	assert.Equal(t, "connection refused", status.Components["redis"].Error)
	assert.Equal(t, status, m.Status())
	assert.Equal(t, []string{"postgresql", "redis"}, m.Names())
}

func TestStartRunsFirstCheckImmediately(t *testing.T) {
	m := New(time.Hour, nil)
	calls := 0
	m.Add("bolt", func(context.Context) error { calls++; return nil })

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop(context.Background()) }()

	assert.Equal(t, 1, calls)
	assert.True(t, m.Status().Healthy)
}

func TestNoDependenciesIsHealthy(t *testing.T) {
	m := New(time.Minute, nil)
	assert.True(t, m.Refresh(context.Background()).Healthy)
}
