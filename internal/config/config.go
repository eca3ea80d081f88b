package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the database connection parameters and export settings.
// Credentials are never embedded in source; they come from a config file,
// environment variables, or CLI flags.
type Config struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"sslmode"`
	OutputRoot   string `yaml:"output_root"`
	JSONRowLimit int    `yaml:"json_row_limit"`
}

// Default returns a Config with the standard local PostgreSQL settings.
// Database and password are intentionally left empty.
func Default() Config {
	return Config{
		Host:         "localhost",
		Port:         5432,
		User:         "postgres",
		SSLMode:      "disable",
		OutputRoot:   ".",
		JSONRowLimit: 1000,
	}
}

// Load reads a YAML config file, layered over the defaults so omitted
// fields keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %v", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %v", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Database == "" {
		return errors.New("database is required")
	}
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.JSONRowLimit <= 0 {
		return fmt.Errorf("invalid json_row_limit: %d", c.JSONRowLimit)
	}
	return nil
}

// DSN renders the postgres:// connection URL, escaping the password.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
