package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/pettycash/internal/notify"
)

func TestWebhook_Send(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var received map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		webhook := notify.NewWebhook(srv.URL, time.Second)

		err := webhook.Send(context.Background(),
			[]string{"finance@example.com"},
			"Petty cash consolidated: March 2026",
			"Custodian: Maria Perez",
			"https://cdn.example.com/march_2026_pettycash.pdf",
		)
		require.NoError(t, err)

		assert.Equal(t, []any{"finance@example.com"}, received["recipients"])
		assert.Equal(t, "Petty cash consolidated: March 2026", received["subject"])
		assert.Equal(t, "Custodian: Maria Perez", received["body"])
		assert.Equal(t, "https://cdn.example.com/march_2026_pettycash.pdf", received["attachment_url"])
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		webhook := notify.NewWebhook(srv.URL, time.Second)

		err := webhook.Send(context.Background(), []string{"a@example.com"}, "s", "b", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 502")
	})

	t.Run("MissingURL", func(t *testing.T) {
		webhook := notify.NewWebhook("", time.Second)

		err := webhook.Send(context.Background(), []string{"a@example.com"}, "s", "b", "")
		assert.Error(t, err)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		webhook := notify.NewWebhook(srv.URL, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := webhook.Send(ctx, []string{"a@example.com"}, "s", "b", "")
		assert.Error(t, err)
	})
}
