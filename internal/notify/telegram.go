package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	hc      *http.Client
	apiBase string
	token   string
}

func NewTelegram(token string) *Telegram {
	return &Telegram{
		hc:      &http.Client{Timeout: 10 * time.Second},
		apiBase: defaultAPIBase,
		token:   token,
	}
}

// Send posts a sendMessage call for the given chat id.
func (t *Telegram) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr struct {
			Description string `json:"description"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Description != "" {
			return fmt.Errorf("telegram sendMessage failed: %s (status=%d)", apiErr.Description, resp.StatusCode)
		}
		return fmt.Errorf("telegram sendMessage failed (status=%d)", resp.StatusCode)
	}
	return nil
}
