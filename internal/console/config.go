package console

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultBaseURL  = "http://127.0.0.1:8080"
	DefaultTimeout  = "15s"
	DefaultLogLevel = "info"
)

var (
	errConfigRead    = errors.New("cannot read config file")
	errConfigInvalid = errors.New("invalid config file")
)

// Config configures the console. It is read from a JSONC file (comments and
// trailing commas allowed) and overridden by command-line flags.
type Config struct {
	// BaseURL is the admin API root, e.g. the address of cmd/server.
	BaseURL string `json:"base_url"`
	// SessionFile keeps the login between runs. Empty disables persistence.
	SessionFile string `json:"session_file"`
	PageSize    int    `json:"page_size"`
	Timeout     string `json:"timeout"`
	// LogFile receives the console's structured log. Empty discards it.
	LogFile  string `json:"log_file"`
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		SessionFile: defaultSessionFile(),
		PageSize:    pkg.DefaultPageSize,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "petadmin", "session.json")
}

// LoadConfig reads path over the defaults. A missing file is an error only
// when mustExist is set.
func LoadConfig(path string, mustExist bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%w %s: %w", errConfigRead, path, err)
	}

	overlay, err := parseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return mergeConfig(cfg, overlay), nil
}

func parseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.BaseURL != "" {
		base.BaseURL = overlay.BaseURL
	}
	if overlay.SessionFile != "" {
		base.SessionFile = overlay.SessionFile
	}
	if overlay.PageSize != 0 {
		base.PageSize = overlay.PageSize
	}
	if overlay.Timeout != "" {
		base.Timeout = overlay.Timeout
	}
	if overlay.LogFile != "" {
		base.LogFile = overlay.LogFile
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	return base
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute http or https URL", c.BaseURL)
	}

	if c.PageSize < 1 || c.PageSize > pkg.MaxPageSize {
		return fmt.Errorf("invalid page_size %d: must be between 1 and %d", c.PageSize, pkg.MaxPageSize)
	}

	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q: must be a positive duration", c.Timeout)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// TimeoutDuration returns the validated timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil {
		return 0
	}
	return d
}
