package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		cleanup  func()
		validate func(*testing.T, *Config)
	}{
		{
			name: "load default config",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() { viper.Reset() },
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "/ocpp", cfg.Server.BasePath)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, []string{"localhost:9092"}, cfg.EventBus.Brokers)
				assert.False(t, cfg.OCPP.AllowSessionPreemption)
				assert.False(t, cfg.OCPP.AllowStatusNotificationWhilePending)
			},
		},
		{
			name: "environment overrides",
			setup: func() {
				viper.Reset()
				os.Setenv("SERVER_PORT", "9090")
				os.Setenv("REDIS_ADDR", "redis:6379")
			},
			cleanup: func() {
				os.Unsetenv("SERVER_PORT")
				os.Unsetenv("REDIS_ADDR")
				viper.Reset()
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "redis:6379", cfg.Redis.Addr)
			},
		},
		{
			name: "explicit overrides",
			setup: func() {
				viper.Reset()
				viper.Set("server.host", "127.0.0.1")
				viper.Set("server.port", 8888)
				viper.Set("cache.max_size", 5000)
				viper.Set("ocpp.heartbeat_interval", "600s")
			},
			cleanup: func() { viper.Reset() },
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 8888, cfg.Server.Port)
				assert.Equal(t, 5000, cfg.Cache.MaxSize)
				assert.Equal(t, 600*time.Second, cfg.OCPP.HeartbeatInterval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			cfg, err := Load()
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestConfig_GetServerAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 8080}}
	assert.Equal(t, "localhost:8080", cfg.GetServerAddr())
}

func TestConfig_GetMetricsAddr(t *testing.T) {
	cfg := &Config{Monitoring: MonitoringConfig{MetricsAddr: ":9090"}}
	assert.Equal(t, ":9090", cfg.GetMetricsAddr())
}

func TestConfig_GetHealthCheckAddr(t *testing.T) {
	cfg := &Config{Monitoring: MonitoringConfig{HealthCheckPort: 8081}}
	assert.Equal(t, ":8081", cfg.GetHealthCheckAddr())
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{App: AppConfig{Profile: "prod"}}
	assert.True(t, cfg.IsProduction())
	cfg.App.Profile = "local"
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ValidatesCoreSections(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Server.Host)
	assert.Greater(t, cfg.Server.Port, 0)
	assert.Greater(t, cfg.Server.MaxConnections, 0)

	assert.NotEmpty(t, cfg.Redis.Addr)
	assert.GreaterOrEqual(t, cfg.Redis.DB, 0)
	assert.Greater(t, cfg.Redis.PoolSize, 0)

	assert.NotEmpty(t, cfg.EventBus.Brokers)
	assert.NotEmpty(t, cfg.EventBus.UpstreamTopic)
	assert.NotEmpty(t, cfg.EventBus.DownstreamTopic)
	assert.NotEmpty(t, cfg.EventBus.ConsumerGroup)

	assert.NotZero(t, cfg.OCPP.HeartbeatInterval)
	assert.NotZero(t, cfg.OCPP.CallRequestTimeout)
}
