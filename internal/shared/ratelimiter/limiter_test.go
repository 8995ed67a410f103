package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		limit    string
		interval string
		want     Config
	}{
		{"defaults", "", "", Config{Limit: DefaultLimit, Interval: DefaultInterval}},
		{"custom", "10", "30s", Config{Limit: 10, Interval: 30 * time.Second}},
		{"invalid falls back", "zero", "-1s", Config{Limit: DefaultLimit, Interval: DefaultInterval}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REFRESH_RATE_LIMIT", tt.limit)
			t.Setenv("REFRESH_RATE_INTERVAL", tt.interval)

			assert.Equal(t, tt.want, LoadConfig())
		})
	}
}

// TestMemoryLimiter_Allow はバースト上限までは許可し、超過分は拒否することを検証します。
func TestMemoryLimiter_Allow(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(Config{Limit: 3, Interval: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "call %d", i+1)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// 別キーは独立してカウントされる
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiter_EvictsIdleKeys(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(Config{Limit: 2, Interval: time.Minute})
	clock := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := l.Allow(ctx, key)
		require.NoError(t, err)
	}
	require.Len(t, l.limiters, 3)

	// 10.0.0.1 だけが使われ続ける
	clock = clock.Add(45 * time.Second)
	_, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.0.0.1")

	// 削除されたキーは満タンのバケットで再作成される
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, ok, "call %d", i+1)
	}
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func newTestRedisLimiter(t *testing.T, cfg Config) (*RedisLimiter, redismock.ClientMock, string) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	l := NewRedisLimiter(db, "refresh", cfg)
	fixed := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return fixed }
	return l, mock, l.windowKey("10.0.0.1")
}

func TestRedisLimiter_Allow(t *testing.T) {
	t.Parallel()

	cfg := Config{Limit: 2, Interval: time.Minute}

	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock, key string)
		want    bool
		wantErr bool
	}{
		{
			name: "first call sets expiry",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectIncr(key).SetVal(1)
				mock.ExpectExpire(key, time.Minute).SetVal(true)
			},
			want: true,
		},
		{
			name: "within limit",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectIncr(key).SetVal(2)
			},
			want: true,
		},
		{
			name: "over limit",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectIncr(key).SetVal(3)
			},
			want: false,
		},
		{
			name: "incr error",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name: "expire error",
			setup: func(mock redismock.ClientMock, key string) {
				mock.ExpectIncr(key).SetVal(1)
				mock.ExpectExpire(key, time.Minute).SetErr(errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, mock, key := newTestRedisLimiter(t, cfg)
			tt.setup(mock, key)

			got, err := l.Allow(context.Background(), "10.0.0.1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisLimiter_WindowKey(t *testing.T) {
	t.Parallel()

	l, _, key := newTestRedisLimiter(t, Config{Limit: 1, Interval: time.Minute})

	assert.Equal(t, "refresh:10.0.0.1:28333333", key)
	l.now = func() time.Time { return time.Unix(1_700_000_060, 0) }
	assert.NotEqual(t, key, l.windowKey("10.0.0.1"), "next window uses a new key")
}
