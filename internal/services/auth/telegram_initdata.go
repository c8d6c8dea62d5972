package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// initDataSecretKey is the constant HMAC key Telegram prescribes for
// deriving the Mini App secret from the bot token.
const initDataSecretKey = "WebAppData"

// ParseInitData validates the initData signature against the bot token and
// extracts the embedded Telegram user. With allowInsecure the signature
// check is skipped; the payload must still carry a user.
func ParseInitData(initData, botToken string, allowInsecure bool) (TelegramUser, error) {
	trimmed := strings.TrimSpace(initData)
	if trimmed == "" {
		return TelegramUser{}, fmt.Errorf("init data is empty: %w", ErrInvalidInput)
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return TelegramUser{}, fmt.Errorf("parse init data query: %w", ErrInvalidInput)
	}

	if !allowInsecure {
		if err := verifySignature(values, botToken); err != nil {
			return TelegramUser{}, err
		}
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return TelegramUser{}, fmt.Errorf("init data has no user field: %w", ErrInvalidInput)
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID <= 0 {
		return TelegramUser{}, fmt.Errorf("decode init data user: %w", ErrInvalidInput)
	}

	return user, nil
}

func verifySignature(values url.Values, botToken string) error {
	if strings.TrimSpace(botToken) == "" {
		return fmt.Errorf("bot token is not configured: %w", ErrUnauthorized)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return fmt.Errorf("init data has no hash: %w", ErrUnauthorized)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" || key == "signature" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte(initDataSecretKey))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(strings.ToLower(gotHash))) {
		return fmt.Errorf("init data signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}
