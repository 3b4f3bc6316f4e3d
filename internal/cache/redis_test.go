package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKV struct {
	data    map[string]string
	lastTTL time.Duration
	err     error
}

func (m *mockKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = string(value.([]byte))
	m.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func TestRedisRoundTrip(t *testing.T) {
	kv := &mockKV{}
	c := NewRedis(kv, time.Minute)

	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(context.Background(), "k", []byte(`{"risk_level":"High"}`)))
	assert.Equal(t, time.Minute, kv.lastTTL)
	assert.Contains(t, kv.data, "conversion:prediction:k")

	v, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"risk_level":"High"}`, string(v))
}

func TestRedisErrors(t *testing.T) {
	c := NewRedis(&mockKV{err: errors.New("dial tcp: refused")}, time.Minute)
	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "k", []byte("v")))
}

func TestNewRedisNilClient(t *testing.T) {
	assert.Nil(t, NewRedis(nil, time.Minute))
}
