package archive_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/pettycash/internal/archive"
)

func TestClient_Put(t *testing.T) {
	document := []byte("%PDF-1.4 settlement")

	t.Run("ReferenceFromBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/documents/march_2026_pettycash.pdf", r.URL.Path)
			assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))

			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, document, body)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url": "https://cdn.example.com/march_2026_pettycash.pdf",
			})
		}))
		defer srv.Close()

		client := archive.NewClient(srv.URL, "secret", time.Second)

		ref, err := client.Put(context.Background(), document, "march_2026_pettycash.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/march_2026_pettycash.pdf", ref)
	})

	t.Run("ReferenceFromLocationHeader", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", "/stored/march_2026_pettycash.pdf")
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := archive.NewClient(srv.URL, "", time.Second)

		ref, err := client.Put(context.Background(), document, "march_2026_pettycash.pdf")
		require.NoError(t, err)
		assert.Equal(t, "/stored/march_2026_pettycash.pdf", ref)
	})

	t.Run("ReferenceFallsBackToUploadURL", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := archive.NewClient(srv.URL, "", time.Second)

		ref, err := client.Put(context.Background(), document, "march_2026_pettycash.pdf")
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/documents/march_2026_pettycash.pdf", ref)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := archive.NewClient(srv.URL, "", time.Second)

		_, err := client.Put(context.Background(), document, "march_2026_pettycash.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 500")
	})

	t.Run("ServerUnreachable", func(t *testing.T) {
		client := archive.NewClient("http://127.0.0.1:1", "", time.Second)

		_, err := client.Put(context.Background(), document, "march_2026_pettycash.pdf")
		assert.Error(t, err)
	})
}
