package kvstore

import (
	"context"
	"testing"

	"board/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantAddr string
		wantPass string
		wantDB   int
		wantErr  bool
	}{
		{
			name:     "Host and port",
			cfg:      config.Config{RedisHost: "localhost", RedisPort: 6379},
			wantAddr: "localhost:6379",
		},
		{
			name:     "URL with password and db",
			cfg:      config.Config{RedisURL: "redis://:s3cret@redis:6380/2", RedisHost: "ignored", RedisPort: 1},
			wantAddr: "redis:6380",
			wantPass: "s3cret",
			wantDB:   2,
		},
		{
			name:     "Bare address in URL",
			cfg:      config.Config{RedisURL: "cache:6379", RedisPassword: "pw", RedisDB: 3},
			wantAddr: "cache:6379",
			wantPass: "pw",
			wantDB:   3,
		},
		{
			name:    "Unsupported scheme",
			cfg:     config.Config{RedisURL: "http://redis:6379"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Options(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantPass, opts.Password)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{RedisURL: mr.Addr()}
	client, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), &config.Config{RedisURL: addr})
	assert.Error(t, err)
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("0"))
	assert.True(t, IsReserved("comments"))
	assert.False(t, IsReserved("1"))
	assert.False(t, IsReserved("10"))
}

func TestNewClient_DisablesMaintNotifications(t *testing.T) {
	opts := &redis.Options{Addr: "localhost:6379"}
	client := NewClient(opts)
	defer func() { _ = client.Close() }()

	require.NotNil(t, opts.MaintNotificationsConfig)
	assert.Equal(t, maintnotifications.ModeDisabled, opts.MaintNotificationsConfig.Mode)
}
