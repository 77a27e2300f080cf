package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "jwt:\n  secret: dev\n")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Engine.Store != StoreMySQL {
		t.Errorf("store = %q, want %q", cfg.Engine.Store, StoreMySQL)
	}
	if got := cfg.Engine.RegradeCooldown(); got != time.Minute {
		t.Errorf("regrade cooldown = %v, want 1m", got)
	}
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, "server:\n  mode: release\njwt:\n  secret: short\n")

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for short secret in release mode")
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	dir := writeConfig(t, "engine:\n  store: cassandra\n")

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "engine:\n  store: mysql\n")
	t.Setenv("ENGINE_STORE", "memory")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.Store != StoreMemory {
		t.Errorf("store = %q, want %q", cfg.Engine.Store, StoreMemory)
	}
}
