package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegram("TOKEN")
	n.apiBase = srv.URL

	err := n.Send(context.Background(), "12345", "spot freed")
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "12345", gotBody["chat_id"])
	assert.Equal(t, "spot freed", gotBody["text"])
}

func TestTelegramSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"bot was blocked by the user"}`))
	}))
	defer srv.Close()

	n := NewTelegram("TOKEN")
	n.apiBase = srv.URL

	err := n.Send(context.Background(), "12345", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}
