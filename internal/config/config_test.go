package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
bot:
  webapp_url: https://nikoh.uz/app
  admin_ids: [111, 222]
chat:
  window: 96h
  messages_per_minute: 12
feed:
  page_size: 10
payment:
  card_holder: NIKOH OPERATOR
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Bot.WebAppURL != "https://nikoh.uz/app" {
		t.Fatalf("unexpected webapp url: %s", cfg.Bot.WebAppURL)
	}
	if len(cfg.Bot.AdminIDs) != 2 || cfg.Bot.AdminIDs[0] != 111 || cfg.Bot.AdminIDs[1] != 222 {
		t.Fatalf("unexpected admin ids: %v", cfg.Bot.AdminIDs)
	}
	if cfg.Chat.Window != 96*time.Hour {
		t.Fatalf("unexpected chat window: %s", cfg.Chat.Window)
	}
	if cfg.Chat.MessagesPerMinute != 12 {
		t.Fatalf("unexpected chat messages/minute: %d", cfg.Chat.MessagesPerMinute)
	}
	if cfg.Feed.PageSize != 10 {
		t.Fatalf("unexpected feed page size: %d", cfg.Feed.PageSize)
	}
	if cfg.Payment.CardHolder != "NIKOH OPERATOR" {
		t.Fatalf("unexpected card holder: %s", cfg.Payment.CardHolder)
	}

	if cfg.Chat.MessagesPer10Sec != 10 {
		t.Fatalf("messages_per_10sec default should stay 10")
	}
	if cfg.Feed.MaxPageSize != 50 {
		t.Fatalf("feed max_page_size default should stay 50")
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("http read_timeout default should stay 5s")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Chat.Window != 7*24*time.Hour {
		t.Fatalf("unexpected default chat window: %s", cfg.Chat.Window)
	}
	if cfg.Feed.PageSize != 20 {
		t.Fatalf("unexpected default feed page size: %d", cfg.Feed.PageSize)
	}
	if cfg.Auth.AllowInsecure {
		t.Fatalf("allow_insecure must default to false")
	}
	if cfg.Bot.SweepInterval != time.Hour {
		t.Fatalf("unexpected default sweep interval: %s", cfg.Bot.SweepInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ADMIN_TELEGRAM_IDS", "10, 20,30")
	t.Setenv("AUTH_ALLOW_INSECURE", "true")
	t.Setenv("CHAT_WINDOW", "48h")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Bot.AdminIDs) != 3 || cfg.Bot.AdminIDs[2] != 30 {
		t.Fatalf("unexpected admin ids from env: %v", cfg.Bot.AdminIDs)
	}
	if !cfg.Auth.AllowInsecure {
		t.Fatalf("AUTH_ALLOW_INSECURE override not applied")
	}
	if cfg.Chat.Window != 48*time.Hour {
		t.Fatalf("CHAT_WINDOW override not applied: %s", cfg.Chat.Window)
	}
}

func TestLoadRejectsMalformedAdminIDList(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ADMIN_TELEGRAM_IDS", "10,abc")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for malformed ADMIN_TELEGRAM_IDS")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"AUTH_ALLOW_INSECURE",
		"BOT_TOKEN",
		"BOT_WEBAPP_URL",
		"ADMIN_TELEGRAM_IDS",
		"BOT_SWEEP_INTERVAL",
		"PAYMENT_CARD_NUMBER",
		"PAYMENT_CARD_HOLDER",
		"CHAT_WINDOW",
		"CHAT_MESSAGES_PER_MINUTE",
		"CHAT_MESSAGES_PER_10SEC",
		"FEED_PAGE_SIZE",
		"FEED_MAX_PAGE_SIZE",
	} {
		t.Setenv(key, "")
	}
}
