package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DataSourceRemote = "remote"
	DataSourceMirror = "mirror"
)

type Config struct {
	Server   ServerConfig
	GRPC     GRPCConfig
	API      APIConfig
	Cache    CacheConfig
	Sync     SyncConfig
	Worker   WorkerConfig
	DB       DatabaseConfig
	Auth     AuthConfig
	Official OfficialConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type GRPCConfig struct {
	Port int
}

// APIConfig points at the remote health API.
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	DataSource string // remote or mirror
}

type CacheConfig struct {
	TTL time.Duration // 0 keeps snapshots until Refresh
}

type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// OfficialConfig describes the single health official allowed to log in.
type OfficialConfig struct {
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Title        string
	Username     string
	Role         string
	Jurisdiction string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
			CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		API: APIConfig{
			BaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
			Timeout:    getEnvDuration("API_TIMEOUT", 15*time.Second),
			DataSource: getEnv("DATA_SOURCE", DataSourceRemote),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Sync: SyncConfig{
			Enabled:  getEnvBool("SYNC_ENABLED", true),
			Interval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 50),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/migrant-health.db"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			SessionTTL: getEnvDuration("SESSION_TTL", 8*time.Hour),
		},
		Official: OfficialConfig{
			Email:        getEnv("OFFICIAL_EMAIL", ""),
			PasswordHash: getEnv("OFFICIAL_PASSWORD_HASH", ""),
			Name:         getEnv("OFFICIAL_NAME", "Dr. Ananya Nair"),
			Title:        getEnv("OFFICIAL_TITLE", "District Medical Officer, Ernakulam"),
			Username:     getEnv("OFFICIAL_USERNAME", "ananya.nair"),
			Role:         getEnv("OFFICIAL_ROLE", "Health Official"),
			Jurisdiction: getEnv("OFFICIAL_JURISDICTION", "Ernakulam, Kerala"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base url: %q", c.API.BaseURL)
	}
	if c.API.DataSource != DataSourceRemote && c.API.DataSource != DataSourceMirror {
		return fmt.Errorf("invalid data source: %s", c.API.DataSource)
	}
	if c.API.DataSource == DataSourceMirror && !c.Sync.Enabled {
		return fmt.Errorf("mirror data source requires SYNC_ENABLED")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.Sync.Enabled && c.Sync.Interval < time.Minute {
		return fmt.Errorf("sync interval must be at least 1 minute")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.Official.Email == "" || c.Official.PasswordHash == "" {
		return fmt.Errorf("OFFICIAL_EMAIL and OFFICIAL_PASSWORD_HASH are required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
