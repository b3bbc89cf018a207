package config

import (
	"strings"
	"testing"
)

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 32),
		AccessTokenSecret:    strings.Repeat("c", 32),
		RefreshTokenSecret:   strings.Repeat("d", 32),
	}
}

func TestValidateForProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"development skips checks", func(c *Config) {
			c.Environment = EnvDevelopment
			c.SessionAuthKey = ""
			c.AccessTokenSecret = "dev-access-secret-change-me"
		}, ""},
		{"short auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"dev access secret", func(c *Config) {
			c.AccessTokenSecret = "dev-" + strings.Repeat("x", 40)
		}, "ACCESS_TOKEN_SECRET must be"},
		{"short refresh secret", func(c *Config) { c.RefreshTokenSecret = "tiny" }, "REFRESH_TOKEN_SECRET must be"},
		{"shared secrets", func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, "must differ"},
		{"debug logging", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
