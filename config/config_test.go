package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.PublicBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.InvitationTimeout)
	assert.Equal(t, "resend", cfg.Email.Provider)
	assert.Equal(t, "onboarding@resend.dev", cfg.Email.FromAddress)
	assert.Equal(t, "memory", cfg.Realtime.Backend)
	assert.Equal(t, "participant_changes", cfg.Realtime.Channel)
	assert.Equal(t, 256, cfg.QRCodeSize)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PUBLIC_BASE_URL", "https://events.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("INVITATION_TIMEOUT", "2m")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("REALTIME_BACKEND", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://events.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.InvitationTimeout)
	assert.Equal(t, "re_test", cfg.Email.ResendAPIKey)
	assert.Equal(t, "postgres", cfg.Realtime.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("REALTIME_BACKEND", "redis")
	t.Setenv("EMAIL_PROVIDER", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REALTIME_BACKEND")
	assert.Contains(t, err.Error(), "EMAIL_PROVIDER")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "event_id", "ev-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "ev-1", rec["event_id"])

	buf.Reset()
	newLogger(&buf, "development", "").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
