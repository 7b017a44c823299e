package accounts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by LoadConfig.
// ACCOUNTS_BASE_URL maps to base_url, ACCOUNTS_SMTP__HOST to smtp.host.
const EnvPrefix = "ACCOUNTS_"

// Config carries the process configuration threaded into constructors at
// startup. Nothing reads it ambiently after that.
type Config struct {
	BaseURL  string     `koanf:"base_url"`
	TokenTTL string     `koanf:"token_ttl"`
	Database string     `koanf:"database"`
	SMTP     SMTPConfig `koanf:"smtp"`
}

// SMTPConfig holds the mail transport credentials.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Links builds the link set for the configured frontend.
func (c Config) Links() Links {
	return DefaultLinks(c.BaseURL)
}

// LoadConfig reads defaults and then the ACCOUNTS_* environment.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"base_url":  "http://localhost:3000",
		"token_ttl": DefaultTokenTTL,
		"database":  "file:accounts.db",
		"smtp.port": 587,
	}

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load default configuration")
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".",
		)
	}), nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load environment configuration")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal configuration")
	}

	return cfg, nil
}
