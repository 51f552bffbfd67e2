package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8090")
	}
	if cfg.DatabasePath != "receipts.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "receipts.db")
	}
	if cfg.MathTolerance != 0.01 {
		t.Errorf("MathTolerance = %v, want 0.01", cfg.MathTolerance)
	}
	if cfg.DetectionPrefixLen != 512 {
		t.Errorf("DetectionPrefixLen = %d, want 512", cfg.DetectionPrefixLen)
	}
	if cfg.Gateway == nil {
		t.Fatal("Gateway config is nil")
	}
	if cfg.Gateway.Workers != 2 {
		t.Errorf("Gateway.Workers = %d, want 2", cfg.Gateway.Workers)
	}
	if cfg.Gateway.Provider != "ollama" {
		t.Errorf("Gateway.Provider = %q, want %q", cfg.Gateway.Provider, "ollama")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("MATH_TOLERANCE", "0.02")
	t.Setenv("GATEWAY_WORKERS", "4")
	t.Setenv("MODEL_TIMEOUT", "45s")
	t.Setenv("MODEL_PROVIDER", "openrouter")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9000")
	}
	if cfg.MathTolerance != 0.02 {
		t.Errorf("MathTolerance = %v, want 0.02", cfg.MathTolerance)
	}
	if cfg.Gateway.Workers != 4 {
		t.Errorf("Gateway.Workers = %d, want 4", cfg.Gateway.Workers)
	}
	if cfg.Gateway.ModelTimeout != 45*time.Second {
		t.Errorf("Gateway.ModelTimeout = %v, want 45s", cfg.Gateway.ModelTimeout)
	}
	if cfg.Gateway.Provider != "openrouter" {
		t.Errorf("Gateway.Provider = %q, want %q", cfg.Gateway.Provider, "openrouter")
	}
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("MATH_TOLERANCE", "also-not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if cfg.MaxOpenConns != 10 {
		t.Errorf("MaxOpenConns = %d, want default 10", cfg.MaxOpenConns)
	}
	if cfg.MathTolerance != 0.01 {
		t.Errorf("MathTolerance = %v, want default 0.01", cfg.MathTolerance)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: "port is required",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "port must be between",
		},
		{
			name:    "idle exceeds open",
			mutate:  func(c *Config) { c.MaxIdleConns = 50 },
			wantErr: "max idle connections cannot be greater",
		},
		{
			name:    "zero tolerance",
			mutate:  func(c *Config) { c.MathTolerance = 0 },
			wantErr: "math tolerance must be positive",
		},
		{
			name:    "significant difference below tolerance",
			mutate:  func(c *Config) { c.SignificantDifference = 0.001 },
			wantErr: "significant difference must exceed",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.AutoPersistThreshold = 1.5 },
			wantErr: "must be in [0, 1]",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Gateway.Provider = "oracle" },
			wantErr: "unknown model provider",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Gateway.Workers = 0 },
			wantErr: "gateway workers must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() unexpected error: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
