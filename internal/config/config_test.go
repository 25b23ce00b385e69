package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("OFFICIAL_EMAIL", "ananya.nair@gov.in")
	t.Setenv("OFFICIAL_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("unexpected base url %s", cfg.API.BaseURL)
	}
	if cfg.API.DataSource != DataSourceRemote {
		t.Errorf("expected remote data source, got %s", cfg.API.DataSource)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %s", cfg.Cache.TTL)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_BASE_URL", "https://health.example.org/api/")
	t.Setenv("CACHE_TTL", "0s")
	t.Setenv("DATA_SOURCE", "mirror")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://health.example.org/api" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.API.BaseURL)
	}
	if cfg.Cache.TTL != 0 {
		t.Errorf("expected ttl 0, got %s", cfg.Cache.TTL)
	}
	if cfg.API.DataSource != DataSourceMirror {
		t.Errorf("expected mirror, got %s", cfg.API.DataSource)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	// unparsable values fall back to defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("expected fallback port, got %d", cfg.Server.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "invalid log level"},
		{"base url", map[string]string{"API_BASE_URL": "localhost"}, "invalid API base url"},
		{"data source", map[string]string{"DATA_SOURCE": "postgres"}, "invalid data source"},
		{"mirror without sync", map[string]string{"DATA_SOURCE": "mirror", "SYNC_ENABLED": "false"}, "requires SYNC_ENABLED"},
		{"sync interval", map[string]string{"SYNC_INTERVAL": "10s"}, "sync interval"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"port", map[string]string{"SERVER_PORT": "70000"}, "invalid server port"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "rate limit burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingOfficial(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("OFFICIAL_EMAIL", "")
	t.Setenv("OFFICIAL_PASSWORD_HASH", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when official credentials are missing")
	}
}
