package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key32(t *testing.T) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("COOKIE_HASH_KEY", key32(t))
	t.Setenv("COOKIE_BLOCK_KEY", key32(t))

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 20*time.Second, cfg.PollInterval)
	assert.Equal(t, 400*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "booking", cfg.BookingPageToken)
	assert.Equal(t, "bookings", cfg.BookingsDir)
	assert.Len(t, cfg.CookieHashKey, 32)
}

func TestFromEnvMissingKeys(t *testing.T) {
	t.Setenv("COOKIE_HASH_KEY", "")
	t.Setenv("COOKIE_BLOCK_KEY", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvBadPollSeconds(t *testing.T) {
	t.Setenv("COOKIE_HASH_KEY", key32(t))
	t.Setenv("COOKIE_BLOCK_KEY", key32(t))
	t.Setenv("POLL_SECONDS", "0")

	_, err := FromEnv()
	assert.Error(t, err)
}
