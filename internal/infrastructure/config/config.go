package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Gate modes for the page routes.
const (
	GateOpen  = "open"
	GateToken = "token"
)

// EnvDevelopment is the APP_ENV / NODE_ENV value that enables the verbose access log.
const EnvDevelopment = "development"

// minJWTSecretLength is the shortest HMAC secret accepted for token signing.
const minJWTSecretLength = 32

// DotEnvPath is the dotenv file read before environment overrides are applied.
// A missing file is ignored.
var DotEnvPath = ".env"

// Config is the root configuration structure for Bookshelf.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// AppConfig contains process-wide settings.
type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

// StorageConfig selects where the book collection lives.
type StorageConfig struct {
	// Driver is "memory" (default, nothing survives restart) or "sqlite".
	Driver string `yaml:"driver"`

	// Seed inserts the three starter books when the collection is empty.
	Seed bool `yaml:"seed"`
}

// DatabaseConfig contains SQLite database settings.
// Only used when storage.driver is "sqlite".
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	AccessLog bool             `yaml:"access_log"`
	StaticDir string           `yaml:"static_dir"` // overrides the embedded stylesheets when set
	TLS       TLSConfig        `yaml:"tls"`
	Timeouts  APITimeoutConfig `yaml:"timeouts"`
	CORS      CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read    int `yaml:"read"`
	Write   int `yaml:"write"`
	Idle    int `yaml:"idle"`
	Handler int `yaml:"handler"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	Gate  GateConfig  `yaml:"gate"`
	JWT   JWTConfig   `yaml:"jwt"`
	Admin AdminConfig `yaml:"admin"`
}

// GateConfig selects how the page routes are authorised.
type GateConfig struct {
	// Mode is "open" (every request allowed) or "token" (valid JWT required).
	Mode string `yaml:"mode"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// AdminConfig holds the single set of credentials accepted by the login endpoint.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// PasswordHash is an Argon2id PHC string; it takes precedence over Password.
	PasswordHash string `yaml:"password_hash"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults); a missing file is skipped
//  3. Variables from the dotenv file (never override the real environment)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern BOOKSHELF_SECTION_KEY, plus the
// conventional PORT and APP_ENV / NODE_ENV.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults are a complete configuration.
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from a dotenv file.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "Bookshelf",
			Env:  "production",
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Seed:   true,
		},
		Database: DatabaseConfig{
			Path:        "./data/bookshelf.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "bookshelf",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: APITimeoutConfig{
				Read:    30,
				Write:   30,
				Idle:    60,
				Handler: 10,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			Gate: GateConfig{Mode: GateOpen},
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
			Admin: AdminConfig{
				Username: "admin",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	// App
	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if cfg.IsDevelopment() {
		cfg.API.AccessLog = true
	}

	// API
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing PORT %q: %w", v, err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("BOOKSHELF_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Storage
	if v := os.Getenv("BOOKSHELF_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("BOOKSHELF_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BOOKSHELF_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BOOKSHELF_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BOOKSHELF_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Security
	if v := os.Getenv("BOOKSHELF_GATE_MODE"); v != "" {
		cfg.Security.Gate.Mode = v
	}
	if v := os.Getenv("BOOKSHELF_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("BOOKSHELF_ADMIN_PASSWORD"); v != "" {
		cfg.Security.Admin.Password = v
	}
	if v := os.Getenv("BOOKSHELF_ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Security.Admin.PasswordHash = v
	}

	return nil
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.TLS.Enabled && (c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "") {
		errs = append(errs, "api.tls requires cert_file and key_file")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite storage driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q must be %q or %q", c.Storage.Driver, StorageMemory, StorageSQLite))
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	switch c.Security.Gate.Mode {
	case GateOpen:
	case GateToken:
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required for the token gate (set BOOKSHELF_JWT_SECRET)")
		}
	default:
		errs = append(errs, fmt.Sprintf("security.gate.mode %q must be %q or %q", c.Security.Gate.Mode, GateOpen, GateToken))
	}

	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, EnvDevelopment)
}

// LoginEnabled reports whether the token login endpoint can issue tokens.
func (c *Config) LoginEnabled() bool {
	return c.Security.LoginEnabled()
}

// LoginEnabled reports whether a signing secret and an admin password are both set.
func (c SecurityConfig) LoginEnabled() bool {
	return c.JWT.Secret != "" && (c.Admin.Password != "" || c.Admin.PasswordHash != "")
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetHandlerTimeout returns the per-request handler timeout as a Duration.
func (c APIConfig) GetHandlerTimeout() time.Duration {
	return time.Duration(c.Timeouts.Handler) * time.Second
}
