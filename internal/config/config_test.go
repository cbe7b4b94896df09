package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FORMCRAFT_STORE", "")
	t.Setenv("FORMCRAFT_TOKEN_TTL", "")
	t.Setenv("OXIDB_PORT", "")

	cfg := Load()
	if cfg.Store != StoreOxiDB {
		t.Fatalf("store = %q", cfg.Store)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if cfg.OxiDBPort != 4444 {
		t.Fatalf("oxidb port = %d", cfg.OxiDBPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORMCRAFT_STORE", StoreMemory)
	t.Setenv("FORMCRAFT_TOKEN_TTL", "90m")
	t.Setenv("OXIDB_PORT", "not-a-port")
	t.Setenv("FORMCRAFT_PUBLIC_URL", "https://forms.example.com/")
	t.Setenv("FORMCRAFT_DEBUG", "true")

	cfg := Load()
	if cfg.Store != StoreMemory {
		t.Fatalf("store = %q", cfg.Store)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if cfg.OxiDBPort != 4444 {
		t.Fatalf("invalid port should fall back, got %d", cfg.OxiDBPort)
	}
	if cfg.PublicURL != "https://forms.example.com" {
		t.Fatalf("public url = %q", cfg.PublicURL)
	}
	if !cfg.Debug {
		t.Fatal("debug not enabled")
	}
}
