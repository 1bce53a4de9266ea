// Package config loads runtime configuration for all three OCPP roles
// from an INI file, with environment-variable overrides and a
// profile-specific overlay (APP_PROFILE=dev/stage/prod selects
// application-{profile}.ini on top of application.ini).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration tree, shared by the cmd/centralsystem,
// cmd/chargepoint and cmd/localcontroller entry points. Each binary only
// reads the sections relevant to its role.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	InstanceID     string               `mapstructure:"instance_id"`
	Server         ServerConfig         `mapstructure:"server"`
	WebSocket      WebSocketConfig      `mapstructure:"websocket"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Redis          RedisConfig          `mapstructure:"redis"`
	EventBus       EventBusConfig       `mapstructure:"eventbus"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Log            LogConfig            `mapstructure:"log"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	OCPP           OCPPConfig           `mapstructure:"ocpp"`
	Security       SecurityConfig       `mapstructure:"security"`
	LocalController LocalControllerConfig `mapstructure:"localcontroller"`
}

// AppConfig carries basic identity used in logs and BootNotification.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Profile string `mapstructure:"profile"`
	Role    string `mapstructure:"role"` // chargepoint | centralsystem | localcontroller
}

// ServerConfig is the listen address for CS/LC WebSocket servers, or the
// CS URL a CP/LC dials out to.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	BasePath       string        `mapstructure:"base_path"`
	DialURL        string        `mapstructure:"dial_url"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxConnections int           `mapstructure:"max_connections"`
}

// WebSocketConfig tunes the gorilla/websocket upgrader and connection
// wrapper lifecycle.
type WebSocketConfig struct {
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	EnableCompression bool          `mapstructure:"enable_compression"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	SendQueueSize     int           `mapstructure:"send_queue_size"`
}

// StorageConfig points at the embedded relational store.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig backs the CS-side connection/session-affinity registry.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// EventBusConfig is the Kafka producer/consumer pair the Central System
// uses to publish integration events and accept downstream commands.
type EventBusConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	UpstreamTopic   string   `mapstructure:"upstream_topic"`
	DownstreamTopic string   `mapstructure:"downstream_topic"`
	ConsumerGroup   string   `mapstructure:"consumer_group"`
}

// CacheConfig tunes the authentication LRU cache.
type CacheConfig struct {
	MaxSize         int           `mapstructure:"max_size"`
	ShardCount      int           `mapstructure:"shard_count"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	Async  bool   `mapstructure:"async"`
}

// MonitoringConfig exposes the Prometheus endpoint.
type MonitoringConfig struct {
	MetricsAddr     string `mapstructure:"metrics_addr"`
	HealthCheckPort int    `mapstructure:"health_check_port"`
}

// OCPPConfig holds the runtime-consumed OCPP protocol tunables, plus two
// configurable behavior toggles for ambiguous edge cases.
type OCPPConfig struct {
	SupportedVersions                    []string      `mapstructure:"supported_versions"`
	HeartbeatInterval                    time.Duration `mapstructure:"heartbeat_interval"`
	MeterValueSampleInterval             time.Duration `mapstructure:"meter_value_sample_interval"`
	ConnectionTimeOut                    time.Duration `mapstructure:"connection_timeout"`
	CallRequestTimeout                   time.Duration `mapstructure:"call_request_timeout"`
	WorkerCount                          int           `mapstructure:"worker_count"`
	ConnectorCount                       int           `mapstructure:"connector_count"`
	AuthorizationCacheEnabled            bool          `mapstructure:"authorization_cache_enabled"`
	LocalAuthListEnabled                 bool          `mapstructure:"local_auth_list_enabled"`
	LocalAuthorizeOffline                bool          `mapstructure:"local_authorize_offline"`
	MaxChargingProfilesInstalled         int           `mapstructure:"max_charging_profiles_installed"`
	ReserveConnectorZeroSupported        bool          `mapstructure:"reserve_connector_zero_supported"`
	ReservationScanInterval              time.Duration `mapstructure:"reservation_scan_interval"`
	ISO15118PnCEnabled                   bool          `mapstructure:"iso15118_pnc_enabled"`
	SecurityLogCap                       int           `mapstructure:"security_log_cap"`
	CertSigningWaitMinimum               time.Duration `mapstructure:"cert_signing_wait_minimum"`
	CertSigningRepeatTimes                int          `mapstructure:"cert_signing_repeat_times"`
	AllowSessionPreemption               bool          `mapstructure:"allow_session_preemption"`
	AllowStatusNotificationWhilePending  bool          `mapstructure:"allow_status_notification_while_pending"`
}

// SecurityConfig drives the CS-side authentication path selection (spec
// §4.I): profile 0 none, 1 Basic over ws, 2 TLS+Basic, 3 mutual TLS.
type SecurityConfig struct {
	Profile         int    `mapstructure:"profile"`
	AuthorizationKey string `mapstructure:"authorization_key"`
	TLSEnabled      bool   `mapstructure:"tls_enabled"`
	CertFile        string `mapstructure:"cert_file"`
	KeyFile         string `mapstructure:"key_file"`
	ClientCAFile    string `mapstructure:"client_ca_file"`
	RequireClientCert bool `mapstructure:"require_client_cert"`
}

// LocalControllerConfig configures the proxy role only.
type LocalControllerConfig struct {
	DisconnectFromCPWhenCSDisconnected bool `mapstructure:"disconnect_from_cp_when_cs_disconnected"`
}

// Load reads application.ini (and, if APP_PROFILE is set, an
// application-{profile}.ini overlay), applies environment overrides, and
// unmarshals the result.
func Load() (*Config, error) {
	setDefaults()

	profile := getProfile()

	if err := loadConfigFile("application"); err != nil {
		fmt.Printf("warning: could not load default config file: %v\n", err)
	}
	if profile != "" {
		name := fmt.Sprintf("application-%s", profile)
		if err := loadConfigFile(name); err != nil {
			fmt.Printf("warning: could not load profile config file %s: %v\n", name, err)
		}
	}

	setupEnvironmentVariables()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.App.Profile = profile

	return &cfg, nil
}

func getProfile() string {
	if profile := os.Getenv("APP_PROFILE"); profile != "" {
		return profile
	}
	if profile := viper.GetString("app.profile"); profile != "" {
		return profile
	}
	return "local"
}

// loadConfigFile merges an INI file located in ./configs or the working
// directory into the global viper instance. Missing profile overlays are
// not fatal.
func loadConfigFile(configName string) error {
	viper.SetConfigName(configName)
	viper.SetConfigType("ini")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	return viper.MergeInConfig()
}

func setupEnvironmentVariables() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.dial_url", "CS_DIAL_URL")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("monitoring.health_check_port", "MONITORING_HEALTH_CHECK_PORT")
	viper.BindEnv("app.profile", "APP_PROFILE")
	viper.BindEnv("app.role", "APP_ROLE")

	if brokers := os.Getenv("EVENTBUS_BROKERS"); brokers != "" {
		list := strings.Split(brokers, ",")
		for i, b := range list {
			list[i] = strings.TrimSpace(b)
		}
		viper.Set("eventbus.brokers", list)
	}
}

func setDefaults() {
	viper.SetDefault("app.name", "ocpp-runtime")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.profile", "local")
	viper.SetDefault("app.role", "centralsystem")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_path", "/ocpp")
	viper.SetDefault("server.dial_url", "ws://localhost:8080/ocpp")
	viper.SetDefault("server.read_timeout", "60s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.max_connections", 100000)

	viper.SetDefault("websocket.read_buffer_size", 4096)
	viper.SetDefault("websocket.write_buffer_size", 4096)
	viper.SetDefault("websocket.handshake_timeout", "10s")
	viper.SetDefault("websocket.ping_interval", "30s")
	viper.SetDefault("websocket.pong_timeout", "10s")
	viper.SetDefault("websocket.max_message_size", 1048576)
	viper.SetDefault("websocket.enable_compression", false)
	viper.SetDefault("websocket.idle_timeout", "15m")
	viper.SetDefault("websocket.cleanup_interval", "10m")
	viper.SetDefault("websocket.send_queue_size", 256)

	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.dsn", "file:ocpp.db?_pragma=journal_mode(WAL)")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("redis.min_idle_conns", 10)
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.read_timeout", "3s")
	viper.SetDefault("redis.write_timeout", "3s")

	viper.SetDefault("eventbus.enabled", false)
	viper.SetDefault("eventbus.brokers", []string{"localhost:9092"})
	viper.SetDefault("eventbus.upstream_topic", "ocpp-events")
	viper.SetDefault("eventbus.downstream_topic", "ocpp-commands")
	viper.SetDefault("eventbus.consumer_group", "ocpp-runtime")

	viper.SetDefault("cache.max_size", 10000)
	viper.SetDefault("cache.shard_count", 16)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("monitoring.metrics_addr", ":9090")
	viper.SetDefault("monitoring.health_check_port", 8081)

	viper.SetDefault("ocpp.supported_versions", []string{"ocpp1.6", "ocpp2.0.1"})
	viper.SetDefault("ocpp.heartbeat_interval", "300s")
	viper.SetDefault("ocpp.meter_value_sample_interval", "60s")
	viper.SetDefault("ocpp.connection_timeout", "60s")
	viper.SetDefault("ocpp.call_request_timeout", "30s")
	viper.SetDefault("ocpp.worker_count", 32)
	viper.SetDefault("ocpp.connector_count", 2)
	viper.SetDefault("ocpp.authorization_cache_enabled", true)
	viper.SetDefault("ocpp.local_auth_list_enabled", false)
	viper.SetDefault("ocpp.local_authorize_offline", true)
	viper.SetDefault("ocpp.max_charging_profiles_installed", 10)
	viper.SetDefault("ocpp.reserve_connector_zero_supported", false)
	viper.SetDefault("ocpp.reservation_scan_interval", "10s")
	viper.SetDefault("ocpp.iso15118_pnc_enabled", false)
	viper.SetDefault("ocpp.security_log_cap", 500)
	viper.SetDefault("ocpp.cert_signing_wait_minimum", "30s")
	viper.SetDefault("ocpp.cert_signing_repeat_times", 3)
	viper.SetDefault("ocpp.allow_session_preemption", false)
	viper.SetDefault("ocpp.allow_status_notification_while_pending", false)

	viper.SetDefault("security.profile", 0)
	viper.SetDefault("security.tls_enabled", false)
	viper.SetDefault("security.require_client_cert", false)

	viper.SetDefault("localcontroller.disconnect_from_cp_when_cs_disconnected", true)
}

// GetServerAddr returns the host:port a CS/LC server should bind to.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetMetricsAddr returns the Prometheus listen address.
func (c *Config) GetMetricsAddr() string {
	return c.Monitoring.MetricsAddr
}

// GetHealthCheckAddr returns the health-check listen address.
func (c *Config) GetHealthCheckAddr() string {
	return fmt.Sprintf(":%d", c.Monitoring.HealthCheckPort)
}

// IsProduction reports whether the active profile is "prod".
func (c *Config) IsProduction() bool {
	return c.App.Profile == "prod"
}
