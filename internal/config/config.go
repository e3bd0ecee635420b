package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Data source modes.
const (
	ModeRemote  = "remote"
	ModeFixture = "fixture"
)

// Config is the top-level server configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	DataSource DataSourceConfig `koanf:"datasource"`
	Database   DatabaseConfig   `koanf:"database"`
	Log        LogConfig        `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	Mode            string `koanf:"mode"`
	Timeout         string `koanf:"timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
	// RequireAuthHeader rejects /api/admin requests that carry no
	// Authorization header before they reach the data source.
	RequireAuthHeader bool            `koanf:"require_auth_header"`
	CORS              CORSConfig      `koanf:"cors"`
	RateLimit         RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// DataSourceConfig selects and configures the backend behind the API.
type DataSourceConfig struct {
	Mode    string        `koanf:"mode"`
	Remote  RemoteConfig  `koanf:"remote"`
	Fixture FixtureConfig `koanf:"fixture"`
}

// RemoteConfig points at the platform's admin API.
type RemoteConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// FixtureConfig configures the local seeded store.
type FixtureConfig struct {
	JWTSecret     string `koanf:"jwt_secret"`
	TokenExpiry   string `koanf:"token_expiry"`
	RefreshExpiry string `koanf:"refresh_expiry"`
	Seed          bool   `koanf:"seed"`
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

// DatabaseConfig holds database connection settings. It is only used in
// fixture mode.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	// Console set to false keeps records off the terminal. nil means on.
	Console         *bool  `koanf:"console"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__DATASOURCE__REMOTE__BASE_URL overrides datasource.remote.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, and
// normalizes whitespace in string fields.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDataSource(); err != nil {
		return err
	}
	if c.DataSource.Mode == ModeFixture {
		if err := c.Database.validate(c.Server.Mode); err != nil {
			return err
		}
	}
	return c.Log.validate()
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Whitespace-only durations mean unset.
	durations := []struct {
		name  string
		value *string
	}{
		{"server.timeout", &c.Server.Timeout},
		{"server.shutdown_timeout", &c.Server.ShutdownTimeout},
		{"server.cors.max_age", &c.Server.CORS.MaxAge},
	}
	for _, f := range durations {
		if err := optionalDuration(f.name, f.value); err != nil {
			return err
		}
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}
	return nil
}

func (c *Config) validateDataSource() error {
	ds := &c.DataSource
	mode := strings.ToLower(strings.TrimSpace(ds.Mode))
	switch mode {
	case ModeRemote, ModeFixture:
		ds.Mode = mode
	default:
		return fmt.Errorf("invalid datasource.mode %q: must be one of %q, %q", ds.Mode, ModeRemote, ModeFixture)
	}

	switch mode {
	case ModeRemote:
		baseURL := strings.TrimSpace(ds.Remote.BaseURL)
		if baseURL == "" {
			return fmt.Errorf("datasource.remote.base_url is required when mode is remote")
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid datasource.remote.base_url %q: %w", ds.Remote.BaseURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid datasource.remote.base_url %q: must be an absolute http or https URL", ds.Remote.BaseURL)
		}
		ds.Remote.BaseURL = baseURL
		if err := optionalDuration("datasource.remote.timeout", &ds.Remote.Timeout); err != nil {
			return err
		}

	case ModeFixture:
		fx := &ds.Fixture
		secret := strings.TrimSpace(fx.JWTSecret)
		if secret == "" {
			return fmt.Errorf("datasource.fixture.jwt_secret is required when mode is fixture")
		}
		if len(secret) < 32 {
			return fmt.Errorf("invalid datasource.fixture.jwt_secret: must be at least 32 characters")
		}
		if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
			return fmt.Errorf("datasource.fixture.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
		}
		fx.JWTSecret = secret

		fx.TokenExpiry = strings.TrimSpace(fx.TokenExpiry)
		if fx.TokenExpiry == "" {
			return fmt.Errorf("datasource.fixture.token_expiry is required when mode is fixture")
		}
		if err := optionalDuration("datasource.fixture.token_expiry", &fx.TokenExpiry); err != nil {
			return err
		}
		if err := optionalDuration("datasource.fixture.refresh_expiry", &fx.RefreshExpiry); err != nil {
			return err
		}

		if fx.Seed {
			fx.AdminEmail = strings.TrimSpace(fx.AdminEmail)
			if fx.AdminEmail == "" || !strings.Contains(fx.AdminEmail, "@") {
				return fmt.Errorf("invalid datasource.fixture.admin_email %q: an email address is required when seeding", fx.AdminEmail)
			}
			if len(fx.AdminPassword) < 8 {
				return fmt.Errorf("invalid datasource.fixture.admin_password: must be at least 8 characters when seeding")
			}
		}
	}
	return nil
}

func (d *DatabaseConfig) validate(serverMode string) error {
	switch d.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", d.Driver, "sqlite", "postgres")
	}

	if d.Driver == "sqlite" {
		sqlitePath := strings.TrimSpace(d.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		d.SQLite.Path = sqlitePath
	}

	if d.Driver == "postgres" {
		pg := &d.Postgres
		host := strings.TrimSpace(pg.Host)
		if host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if pg.Port < 1 || pg.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
		}
		user := strings.TrimSpace(pg.User)
		if user == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		dbName := strings.TrimSpace(pg.DBName)
		if dbName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}

		sslMode := strings.TrimSpace(pg.SSLMode)
		switch sslMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if serverMode == gin.ReleaseMode {
			switch sslMode {
			case "require", "verify-ca", "verify-full":
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}

		pg.Host = host
		pg.User = user
		pg.DBName = dbName
		pg.SSLMode = sslMode
	}

	return optionalDuration("database.pool.conn_max_lifetime", &d.Pool.ConnMaxLifetime)
}

func (l *LogConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}
	return nil
}

// optionalDuration trims *value and, when non-empty, requires a positive
// Go duration.
func optionalDuration(name string, value *string) error {
	v := strings.TrimSpace(*value)
	*value = v
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be a valid duration (e.g. \"30s\", \"24h\"): %w", name, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, v)
	}
	return nil
}

// DurationOr parses a validated duration string, returning def when unset.
func DurationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	hasLower := false
	hasUpper := false
	hasDigit := false
	hasSymbol := false

	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, has := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if has {
			classes++
		}
	}
	return classes
}
