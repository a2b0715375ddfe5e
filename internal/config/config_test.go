package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: "9090"
jwt:
  secret: "test-secret"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.Server.StoragePath != "uploads" {
		t.Fatalf("expected default storage path, got %q", cfg.Server.StoragePath)
	}
	if cfg.Database.Host != "localhost" {
		t.Fatalf("expected default database host, got %q", cfg.Database.Host)
	}
	if cfg.JWT.AccessTokenExpiration != "1h" {
		t.Fatalf("expected default token expiration, got %q", cfg.JWT.AccessTokenExpiration)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("expected env secret, got %q", cfg.JWT.Secret)
	}
	if cfg.Database.Host != "db.internal" {
		t.Fatalf("expected env host, got %q", cfg.Database.Host)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Fatalf("expected env max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error when JWT secret is absent")
	}
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Database.User = "app"
	cfg.Database.Password = "secret"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.DBName = "tracker"

	got := cfg.GetPostgresConnectionString()
	want := "postgres://app:secret@db:5433/tracker?sslmode=disable"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
