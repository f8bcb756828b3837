package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIKey is the shared secret accepted when none is configured
const DefaultAPIKey = "api_key_simulada"

// Artifact backends
const (
	ArtifactBackendFile  = "file"
	ArtifactBackendS3    = "s3"
	ArtifactBackendRedis = "redis"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Auth      AuthConfig
	Artifact  ArtifactConfig
	Telemetry TelemetryConfig
	Profiler  ProfilerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // comma-separated: stdout, stderr, or file paths
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// AuthConfig holds the shared-secret API key settings
type AuthConfig struct {
	Enabled    bool
	HeaderName string
	APIKey     string
	// APIKeyHash is a bcrypt hash; when set it takes precedence over APIKey
	APIKeyHash string
	SkipPaths  []string
}

// ArtifactConfig selects where export, report and fiscal documents are written
type ArtifactConfig struct {
	Backend      string // file, s3, redis
	BaseDir      string
	ExportPrefix string
	ReportPrefix string
	FiscalPrefix string
	S3           S3Config
	Redis        RedisConfig
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	UseSSL       bool
	UsePathStyle bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Enables trace export
	MetricsEnabled    bool    // Enables metric export
	LogsEnabled       bool    // Enables log export through the zap bridge
	CollectorEndpoint string  // OTLP gRPC endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // development only
	MetricsInterval   time.Duration
}

// ProfilerConfig holds continuous profiling configuration
type ProfilerConfig struct {
	Enabled       bool
	ServerAddress string
	AuthToken     string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BACKOFFICE_ prefix (e.g., BACKOFFICE_AUTH_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BACKOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Deployments of the first release exported the key under this name
	if err := v.BindEnv("auth.api_key", "BACKOFFICE_AUTH_API_KEY", "NASAJON_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding auth.api_key: %w", err)
	}
	v.SetDefault("auth.enabled", true)
	v.SetDefault("http.rate_limit_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			Enabled:    v.GetBool("auth.enabled"),
			HeaderName: v.GetString("auth.header_name"),
			APIKey:     v.GetString("auth.api_key"),
			APIKeyHash: v.GetString("auth.api_key_hash"),
			SkipPaths:  v.GetStringSlice("auth.skip_paths"),
		},
		Artifact: ArtifactConfig{
			Backend:      v.GetString("artifact.backend"),
			BaseDir:      v.GetString("artifact.base_dir"),
			ExportPrefix: v.GetString("artifact.export_prefix"),
			ReportPrefix: v.GetString("artifact.report_prefix"),
			FiscalPrefix: v.GetString("artifact.fiscal_prefix"),
			S3: S3Config{
				Endpoint:     v.GetString("artifact.s3.endpoint"),
				Region:       v.GetString("artifact.s3.region"),
				Bucket:       v.GetString("artifact.s3.bucket"),
				AccessKey:    v.GetString("artifact.s3.access_key"),
				SecretKey:    v.GetString("artifact.s3.secret_key"),
				KeyPrefix:    v.GetString("artifact.s3.key_prefix"),
				UseSSL:       v.GetBool("artifact.s3.use_ssl"),
				UsePathStyle: v.GetBool("artifact.s3.use_path_style"),
			},
			Redis: RedisConfig{
				Host:      v.GetString("artifact.redis.host"),
				Port:      v.GetInt("artifact.redis.port"),
				Password:  v.GetString("artifact.redis.password"),
				DB:        v.GetInt("artifact.redis.db"),
				KeyPrefix: v.GetString("artifact.redis.key_prefix"),
				TTL:       v.GetDuration("artifact.redis.ttl"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
		Profiler: ProfilerConfig{
			Enabled:       v.GetBool("profiler.enabled"),
			ServerAddress: v.GetString("profiler.server_address"),
			AuthToken:     v.GetString("profiler.auth_token"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "backoffice"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-API-Key", "X-Request-ID"}
	}
	if cfg.Auth.HeaderName == "" {
		cfg.Auth.HeaderName = "X-API-Key"
	}
	if cfg.Auth.APIKey == "" && cfg.Auth.APIKeyHash == "" {
		cfg.Auth.APIKey = DefaultAPIKey
	}
	if len(cfg.Auth.SkipPaths) == 0 {
		cfg.Auth.SkipPaths = []string{"/api/status", "/health"}
	}
	if cfg.Artifact.Backend == "" {
		cfg.Artifact.Backend = ArtifactBackendFile
	}
	if cfg.Artifact.BaseDir == "" {
		cfg.Artifact.BaseDir = "."
	}
	if cfg.Artifact.ExportPrefix == "" {
		cfg.Artifact.ExportPrefix = "dados_exportados"
	}
	if cfg.Artifact.ReportPrefix == "" {
		cfg.Artifact.ReportPrefix = "relatorios"
	}
	if cfg.Artifact.FiscalPrefix == "" {
		cfg.Artifact.FiscalPrefix = "notas_fiscais"
	}
	if cfg.Artifact.S3.Region == "" {
		cfg.Artifact.S3.Region = "us-east-1"
	}
	if cfg.Artifact.Redis.Host == "" {
		cfg.Artifact.Redis.Host = "localhost"
	}
	if cfg.Artifact.Redis.Port == 0 {
		cfg.Artifact.Redis.Port = 6379
	}
	if cfg.Artifact.Redis.KeyPrefix == "" {
		cfg.Artifact.Redis.KeyPrefix = "backoffice:artifact:"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Profiler.ServerAddress == "" {
		cfg.Profiler.ServerAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Artifact.Backend {
	case ArtifactBackendFile, ArtifactBackendRedis:
	case ArtifactBackendS3:
		if c.Artifact.S3.Bucket == "" {
			return fmt.Errorf("artifact.s3.bucket is required when artifact.backend is s3")
		}
	default:
		return fmt.Errorf("artifact.backend must be one of file, s3, redis, got %q", c.Artifact.Backend)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Auth.Enabled && c.Auth.APIKeyHash == "" && c.Auth.APIKey == DefaultAPIKey {
			return fmt.Errorf("auth.api_key must be changed from the default in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// IsProduction reports whether the application runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
