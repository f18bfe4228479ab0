package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tmscout-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:lib/telegram")
	t.Cleanup(cleanup)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientOptions{Token: "test-token", ApiUrl: server.URL})
}

func TestSendMessage(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	}))

	err := client.SendMessage(context.Background(), "123", "hello", true)
	require.NoError(t, err)
	require.Equal(t, "123", got["chat_id"])
	require.Equal(t, "hello", got["text"])
	require.Equal(t, "Markdown", got["parse_mode"])
}

func TestSendMessageFallsBackToPlainText(t *testing.T) {
	var calls []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls = append(calls, body["parse_mode"])
		w.Header().Set("Content-Type", "application/json")
		if body["parse_mode"] == "Markdown" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"ok": false, "description": "can't parse entities"}`)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))

	err := client.SendMessage(context.Background(), "123", "broken [markdown", true)
	require.NoError(t, err)
	require.Equal(t, []string{"Markdown", ""}, calls)
}

func TestGetUpdates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("offset"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true, "result": [
			{"update_id": 7, "message": {"text": "/status", "chat": {"id": 99}}}
		]}`)
	}))

	updates, err := client.GetUpdates(context.Background(), 7, 25)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, int64(7), updates[0].UpdateId)
	require.Equal(t, "/status", updates[0].Message.Text)
	require.Equal(t, int64(99), updates[0].Message.Chat.Id)
}
