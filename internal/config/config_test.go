package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %v, want %v", cfg.ServerPort, "8080")
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %v, want %v", cfg.DatabaseType, "sqlite")
	}
	if cfg.GeminiModel != "gemini-pro" {
		t.Errorf("GeminiModel = %v, want %v", cfg.GeminiModel, "gemini-pro")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("TOKEN_DURATION", "2h")
	t.Setenv("S3_BUCKET", "photos-prod")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %v, want %v", cfg.ServerPort, "9090")
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Errorf("TokenDuration = %v, want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.S3Bucket != "photos-prod" {
		t.Errorf("S3Bucket = %v, want %v", cfg.S3Bucket, "photos-prod")
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty uses default", "", true},
		{"valid false", "false", false},
		{"garbage uses default", "maybe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FLAG", tt.value)
			if got := getEnvBool("TEST_FLAG", true); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}
