package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

//go:embed config.example.toml
var exampleConf []byte

// Operating modes for the Smartcar client. ModeTest serves simulated vehicles.
const (
	ModeTest = "test"
	ModeLive = "live"
)

// Config represents the application configuration, assembled from the embedded
// defaults, an optional TOML file, and environment variable overrides (in that order).
type Config struct {
	Smartcar SmartcarConfig `toml:"smartcar"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`
}

// SmartcarConfig contains Smartcar API credentials and operating mode.
type SmartcarConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Mode         string `toml:"mode"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// SessionConfig contains cookie session settings.
type SessionConfig struct {
	Secret string `toml:"secret"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the config. Environment values
// always win over file values.
//
//	SMARTCAR_CLIENT_ID, SMARTCAR_CLIENT_SECRET, SMARTCAR_REDIRECT_URI,
//	SMARTCAR_MODE, PORT, SESSION_SECRET
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SMARTCAR_CLIENT_ID"); v != "" {
		c.Smartcar.ClientID = v
	}
	if v := os.Getenv("SMARTCAR_CLIENT_SECRET"); v != "" {
		c.Smartcar.ClientSecret = v
	}
	if v := os.Getenv("SMARTCAR_REDIRECT_URI"); v != "" {
		c.Smartcar.RedirectURI = v
	}
	if v := os.Getenv("SMARTCAR_MODE"); v != "" {
		c.Smartcar.Mode = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT must be numeric, got %q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	return nil
}

// ApplyDefaults fills in derived and default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Smartcar.Mode == "" {
		c.Smartcar.Mode = ModeTest
	}
	if c.Smartcar.RedirectURI == "" {
		c.Smartcar.RedirectURI = fmt.Sprintf("http://localhost:%d/callback", c.Server.Port)
	}
}

// Validate checks that credentials are well-formed UUIDs, the mode is known, and
// the port is usable. Validation failures are fatal at startup.
func (c *Config) Validate() error {
	var errs []string
	if c.Smartcar.ClientID == "" {
		errs = append(errs, "smartcar client_id is required")
	} else if _, err := uuid.Parse(c.Smartcar.ClientID); err != nil {
		errs = append(errs, fmt.Sprintf("smartcar client_id must be a valid UUID: %v", err))
	}
	if c.Smartcar.ClientSecret == "" {
		errs = append(errs, "smartcar client_secret is required")
	} else if _, err := uuid.Parse(c.Smartcar.ClientSecret); err != nil {
		errs = append(errs, fmt.Sprintf("smartcar client_secret must be a valid UUID: %v", err))
	}
	if c.Smartcar.Mode != ModeTest && c.Smartcar.Mode != ModeLive {
		errs = append(errs, fmt.Sprintf("smartcar mode must be %q or %q, got %q", ModeTest, ModeLive, c.Smartcar.Mode))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Resolve assembles the runtime configuration: embedded defaults, then the TOML
// file at path when it exists, then environment overrides, then validation.
func Resolve(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
