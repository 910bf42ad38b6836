package config

import (
	"os"
	"path/filepath"
	"testing"
)

// noDotEnv points the dotenv loader at a file that does not exist.
func noDotEnv(t *testing.T) {
	t.Helper()
	original := DotEnvPath
	DotEnvPath = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { DotEnvPath = original })

	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
}

func TestLoad_ValidConfig(t *testing.T) {
	noDotEnv(t)

	content := `
app:
  name: "Test Shelf"
storage:
  driver: "sqlite"
database:
  path: "/tmp/books.db"
api:
  host: "127.0.0.1"
  port: 8081
security:
  gate:
    mode: "token"
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "Test Shelf" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "Test Shelf")
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageSQLite)
	}
	if cfg.Database.Path != "/tmp/books.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/books.db")
	}
	if cfg.API.Port != 8081 {
		t.Errorf("API.Port = %d, want 8081", cfg.API.Port)
	}
	if cfg.Security.Gate.Mode != GateToken {
		t.Errorf("Security.Gate.Mode = %q, want %q", cfg.Security.Gate.Mode, GateToken)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	noDotEnv(t)

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 5000 {
		t.Errorf("API.Port = %d, want 5000", cfg.API.Port)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageMemory)
	}
	if !cfg.Storage.Seed {
		t.Error("Storage.Seed = false, want true")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	noDotEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	noDotEnv(t)

	content := `
storage:
  driver: "postgres"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for unknown storage driver, got nil")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("BOOKSHELF_API_HOST=10.0.0.7\n"), 0600); err != nil {
		t.Fatalf("failed to write dotenv: %v", err)
	}

	original := DotEnvPath
	DotEnvPath = envPath
	t.Cleanup(func() { DotEnvPath = original })

	// Registered so the variable set by godotenv is restored after the test.
	t.Setenv("BOOKSHELF_API_HOST", "")
	os.Unsetenv("BOOKSHELF_API_HOST")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Host != "10.0.0.7" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "10.0.0.7")
	}
}

func TestConfig_Validate(t *testing.T) {
	validJWTSecret := "test-secret-key-at-least-32-chars!"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "redis" },
			wantErr: true,
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageSQLite
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "token gate without secret",
			mutate:  func(c *Config) { c.Security.Gate.Mode = GateToken },
			wantErr: true,
		},
		{
			name: "token gate with secret",
			mutate: func(c *Config) {
				c.Security.Gate.Mode = GateToken
				c.Security.JWT.Secret = validJWTSecret
			},
			wantErr: false,
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: true,
		},
		{
			name:    "unknown gate mode",
			mutate:  func(c *Config) { c.Security.Gate.Mode = "basic" },
			wantErr: true,
		},
		{
			name: "tls without certificate",
			mutate: func(c *Config) {
				c.API.TLS.Enabled = true
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfig_GetTimeouts(t *testing.T) {
	cfg := APIConfig{
		Timeouts: APITimeoutConfig{
			Read:    30,
			Write:   45,
			Idle:    60,
			Handler: 5,
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetHandlerTimeout().Seconds(); got != 5 {
		t.Errorf("GetHandlerTimeout() = %v, want 5", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("NODE_ENV", "")
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "6001")
	t.Setenv("BOOKSHELF_API_HOST", "192.168.1.1")
	t.Setenv("BOOKSHELF_STORAGE_DRIVER", "sqlite")
	t.Setenv("BOOKSHELF_DATABASE_PATH", "/custom/path.db")
	t.Setenv("BOOKSHELF_MQTT_HOST", "mqtt.example.com")
	t.Setenv("BOOKSHELF_JWT_SECRET", "jwt-secret")
	t.Setenv("BOOKSHELF_ADMIN_PASSWORD", "hunter2")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if !cfg.API.AccessLog {
		t.Error("API.AccessLog = false, want true in development")
	}
	if cfg.API.Port != 6001 {
		t.Errorf("API.Port = %d, want 6001", cfg.API.Port)
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageSQLite)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.Security.JWT.Secret != "jwt-secret" {
		t.Errorf("Security.JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "jwt-secret")
	}
	if !cfg.LoginEnabled() {
		t.Error("LoginEnabled() = false, want true")
	}
}

func TestApplyEnvOverrides_InvalidPort(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("PORT", "five-thousand")

	if err := applyEnvOverrides(cfg); err == nil {
		t.Error("applyEnvOverrides() expected error for non-numeric PORT")
	}
}

func TestApplyEnvOverrides_NodeEnvFallback(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "development")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}
	if !cfg.API.AccessLog {
		t.Error("API.AccessLog = false, want true when NODE_ENV=development")
	}
}
