package authgate

import (
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// ServerConfig is the process configuration read at startup
type ServerConfig struct {
	Server   ServerSection   `yaml:"server"`
	Database DatabaseSection `yaml:"database"`
	Auth     Options         `yaml:"auth"`
	Logging  LoggingSection  `yaml:"logging"`
	Seed     SeedSection     `yaml:"seed"`
}

// ServerSection holds the listen address
type ServerSection struct {
	Addr string `yaml:"addr"`
}

// DatabaseSection selects the user store. An empty DSN keeps users in memory.
type DatabaseSection struct {
	DSN string `yaml:"dsn"`
}

// LoggingSection holds logging configuration
type LoggingSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SeedSection points at a YAML file of users created on startup
type SeedSection struct {
	UsersFile string `yaml:"users_file"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfig reads a YAML config file. ${VAR} references are expanded from
// the environment before parsing.
func LoadConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to read config file")
	}
	return ParseConfig(data)
}

// ParseConfig parses, defaults and validates raw YAML configuration
func ParseConfig(data []byte) (*ServerConfig, error) {
	expanded := expandEnvVars(string(data))

	var cfg ServerConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse config file")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.Auth = c.Auth.WithDefaults()
}

// Validate will validate the configuration
func (c ServerConfig) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}

	err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Logging.Format, validation.In("text", "json")),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid logging configuration").
			WithTextCode("INVALID_CONFIG")
	}
	return nil
}

func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
