package internal

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/analyzer"
	"github.com/starford/quire/internal/encryption"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// DefaultSlot is the name under which the collection is stored. It matches
// the key used by the browser edition.
const DefaultSlot = "shareable-notes"

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Storage    StorageConfig     `yaml:"storage"`
	Encryption encryption.Params `yaml:"encryption"`
	Auth       AuthConfig        `yaml:"auth"`
	Analyzer   AnalyzerConfig    `yaml:"analyzer"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Encryption.Validate(); err != nil {
		return fmt.Errorf("encryption: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Analyzer.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration. The API serves a single user,
// so it binds to loopback unless told otherwise.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where the note collection lives.
//
// For the file driver Path is a directory holding <slot>.json; for the
// sqlite driver it is the database file.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Slot   string `yaml:"slot"`
	Watch  bool   `yaml:"watch"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Slot == "" {
		c.Slot = DefaultSlot
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFile, DriverSQLite)),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Watch, validation.When(c.Driver == DriverSQLite, validation.Empty.Error("watch is only supported by the file driver"))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for loopback use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// AnalyzerConfig tunes the writing insights.
type AnalyzerConfig struct {
	WordsPerMinute   int `yaml:"words_per_minute"`
	KeywordLimit     int `yaml:"keyword_limit"`
	SummarySentences int `yaml:"summary_sentences"`
}

// Validate validates the analyzer configuration.
func (c *AnalyzerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WordsPerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.KeywordLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.SummarySentences, validation.Required, validation.Min(1)),
	)
}

// Options converts the configuration to analyzer options.
func (c *AnalyzerConfig) Options() analyzer.Options {
	return analyzer.Options{
		WordsPerMinute:   c.WordsPerMinute,
		KeywordLimit:     c.KeywordLimit,
		SummarySentences: c.SummarySentences,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	o := analyzer.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   "./data",
			Slot:   DefaultSlot,
			Watch:  true,
		},
		Encryption: encryption.DefaultParams(),
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Analyzer: AnalyzerConfig{
			WordsPerMinute:   o.WordsPerMinute,
			KeywordLimit:     o.KeywordLimit,
			SummarySentences: o.SummarySentences,
		},
	}
}
