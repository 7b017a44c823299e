package accounts_test

import (
	"testing"

	"github.com/campuskit/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := accounts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, accounts.DefaultTokenTTL, cfg.TokenTTL)
	assert.Equal(t, "file:accounts.db", cfg.Database)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ACCOUNTS_BASE_URL", "https://campus.example.com")
	t.Setenv("ACCOUNTS_TOKEN_TTL", "48h")
	t.Setenv("ACCOUNTS_SMTP__HOST", "smtp.example.com")
	t.Setenv("ACCOUNTS_SMTP__USERNAME", "mailer")

	cfg, err := accounts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://campus.example.com", cfg.BaseURL)
	assert.Equal(t, "48h", cfg.TokenTTL)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "mailer", cfg.SMTP.Username)

	links := cfg.Links()
	assert.Equal(t,
		"https://campus.example.com/verify-email?token=tkn",
		links.VerificationLink("tkn"),
	)
}
