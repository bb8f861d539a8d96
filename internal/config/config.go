package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string

	CookieHashKey  []byte
	CookieBlockKey []byte

	// site adapter
	WebDriverURL string
	BookingURL   string
	// BookingPageToken is the substring the current URL must contain while
	// on the booking page.
	BookingPageToken string

	// polling
	PollInterval time.Duration
	SettleDelay  time.Duration

	// notifier
	TelegramToken  string
	TelegramChatID string

	// shared booking contact fields
	ContactEmail string
	ContactPhone string

	// fallback file store, used when DATABASE_URL is unset
	BookingsDir string
}

func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		WebDriverURL:     getenv("WEBDRIVER_URL", "http://localhost:4444"),
		BookingURL:       getenv("BOOKING_URL", "https://www.areamarinaprotettagaiola.it/prenotazione/"),
		BookingPageToken: getenv("BOOKING_PAGE_TOKEN", "booking"),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		TelegramChatID:   strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		ContactEmail:     strings.TrimSpace(os.Getenv("CONTACT_EMAIL")),
		ContactPhone:     strings.TrimSpace(os.Getenv("CONTACT_PHONE")),
		BookingsDir:      getenv("BOOKINGS_DIR", "bookings"),
	}

	pollSec, err := strconv.Atoi(getenv("POLL_SECONDS", "20"))
	if err != nil || pollSec < 1 {
		return Config{}, fmt.Errorf("invalid POLL_SECONDS")
	}
	cfg.PollInterval = time.Duration(pollSec) * time.Second

	settleMs, err := strconv.Atoi(getenv("SETTLE_MS", "400"))
	if err != nil || settleMs < 0 {
		return Config{}, fmt.Errorf("invalid SETTLE_MS")
	}
	cfg.SettleDelay = time.Duration(settleMs) * time.Millisecond

	hashKey := os.Getenv("COOKIE_HASH_KEY")
	blockKey := os.Getenv("COOKIE_BLOCK_KEY")
	if hashKey == "" || blockKey == "" {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (base64)")
	}
	if cfg.CookieHashKey, err = decodeB64(hashKey); err != nil {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
	}
	if cfg.CookieBlockKey, err = decodeB64(blockKey); err != nil {
		return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
	}

	return cfg, nil
}

func decodeB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
