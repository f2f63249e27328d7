package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"hubhook/internal/channel"
	"hubhook/internal/eventlog"
	"hubhook/internal/security"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name searched for in the default config locations
const ConfigFileName = "hubhook.yaml"

const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 5000
	DefaultLogLevel = "info"
)

// Config holds the gateway configuration. Values are fixed once the server
// starts.
type Config struct {
	Host             string      `yaml:"host"`
	Port             int         `yaml:"port"`
	AppSecret        string      `yaml:"app_secret"`
	VerifyToken      string      `yaml:"verify_token"`
	EnforceSignature bool        `yaml:"enforce_signature"`
	Channels         []string    `yaml:"channels"`
	Store            StoreConfig `yaml:"store"`
	Log              LogConfig   `yaml:"log"`

	// path of the file that supplied app_secret, for permission checks
	secretFile string
}

// StoreConfig selects the event log backend
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// LogConfig controls structured logging
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// NewConfig creates a new config with defaults
func NewConfig() *Config {
	return &Config{
		Host:             DefaultHost,
		Port:             DefaultPort,
		VerifyToken:      security.DefaultVerifyToken,
		EnforceSignature: true,
		Channels:         channel.Names(channel.All()),
		Store: StoreConfig{
			Driver: eventlog.DriverMemory,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadFromFile loads config from a YAML file. Keys absent from the file keep
// their current values.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	before := c.AppSecret
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if c.AppSecret != before {
		c.secretFile = path
	}

	return nil
}

// LoadFromEnv overrides config from environment variables. PORT, APP_SECRET
// and TOKEN are honored for compatibility with hosting platforms; the
// HUBHOOK_-prefixed names take precedence.
func (c *Config) LoadFromEnv() error {
	values := map[string]string{}

	for key, envs := range envBindings {
		for _, env := range envs {
			if value := os.Getenv(env); value != "" {
				values[key] = value
			}
		}
	}

	if _, ok := values["app-secret"]; ok {
		c.secretFile = ""
	}

	return c.SetFromFlags(values)
}

// envBindings maps flag names to environment variables, lowest precedence first
var envBindings = map[string][]string{
	"host":              {"HUBHOOK_HOST"},
	"port":              {"PORT", "HUBHOOK_PORT"},
	"app-secret":        {"APP_SECRET", "HUBHOOK_APP_SECRET"},
	"verify-token":      {"TOKEN", "HUBHOOK_VERIFY_TOKEN"},
	"enforce-signature": {"HUBHOOK_ENFORCE_SIGNATURE"},
	"channels":          {"HUBHOOK_CHANNELS"},
	"store":             {"HUBHOOK_STORE"},
	"store-path":        {"HUBHOOK_STORE_PATH"},
	"log":               {"HUBHOOK_LOG_FILE"},
	"log-level":         {"HUBHOOK_LOG_LEVEL"},
}

// SetFromFlags updates config from command line flag values keyed by flag
// name. Empty values are ignored.
func (c *Config) SetFromFlags(flags map[string]string) error {
	for key, value := range flags {
		if value == "" {
			continue
		}
		switch key {
		case "host":
			c.Host = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid port '%s': %w", value, err)
			}
			c.Port = port
		case "app-secret":
			c.AppSecret = value
			c.secretFile = ""
		case "verify-token":
			c.VerifyToken = value
		case "enforce-signature":
			enforce, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid enforce-signature value '%s': %w", value, err)
			}
			c.EnforceSignature = enforce
		case "channels":
			c.Channels = splitList(value)
		case "store":
			c.Store.Driver = value
		case "store-path":
			c.Store.Path = value
		case "log":
			c.Log.File = value
		case "log-level":
			c.Log.Level = value
		}
	}
	return nil
}

// Validate ensures the configuration can start a gateway.
// It returns every problem found rather than stopping at the first.
func (c *Config) Validate() []string {
	var errors []string

	if c.Port < 1 || c.Port > 65535 {
		errors = append(errors, fmt.Sprintf("  - port must be between 1 and 65535, got %d", c.Port))
	}

	if c.VerifyToken == "" {
		errors = append(errors, "  - verify_token must not be empty")
	}

	if c.EnforceSignature && c.AppSecret == "" {
		errors = append(errors, "  - app_secret is required while enforce_signature is enabled (set APP_SECRET, or disable enforcement explicitly)")
	}

	if len(c.Channels) == 0 {
		errors = append(errors, "  - at least one channel must be enabled")
	} else if _, err := channel.ParseList(c.Channels); err != nil {
		errors = append(errors, fmt.Sprintf("  - %v", err))
	}

	if !eventlog.ValidDriver(c.Store.Driver) {
		errors = append(errors, fmt.Sprintf("  - store driver must be one of %s, got '%s'",
			strings.Join(eventlog.Drivers(), ", "), c.Store.Driver))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errors = append(errors, fmt.Sprintf("  - %v", err))
	}

	return errors
}

// Warnings returns non-fatal problems worth logging at startup
func (c *Config) Warnings() []string {
	var warnings []string

	if !c.EnforceSignature {
		warnings = append(warnings, "signature enforcement is DISABLED; unsigned and forged POSTs will be accepted")
	}

	if c.AppSecret != "" && security.IsWeakSecret(c.AppSecret) {
		warnings = append(warnings, "app_secret looks weak or like a placeholder")
	}

	if security.IsPlaceholder(c.VerifyToken) {
		warnings = append(warnings, "verify_token is a default or placeholder value; anyone can complete the handshake")
	}

	if c.secretFile != "" {
		if err := security.ValidateSecurePermissions(c.secretFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("config file holds app_secret: %v", err))
		}
	}

	return warnings
}

// ChannelList returns the enabled channels
func (c *Config) ChannelList() ([]channel.Channel, error) {
	return channel.ParseList(c.Channels)
}

// StorePath returns the configured store path, or the driver default
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return eventlog.DefaultPath(c.Store.Driver)
}

// LogLevel returns the slog level for the configured log level name.
// Invalid names fall back to info; Validate reports them.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s'", name)
	}
	return level, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
