package geminirepo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "key-123", r.Header.Get("X-goog-api-key"))

		var req generateReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "world"}}}},
			},
		})
	}))
	defer srv.Close()

	r := NewHTTPWithURL("key-123", srv.URL)
	got, err := r.GenerateContent(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "world", got)
}

func TestGenerateContent_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewHTTPWithURL("key-123", srv.URL)
	_, err := r.GenerateContent(context.Background(), "hello")
	require.Error(t, err)
}

func TestGenerateContent_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	r := NewHTTPWithURL("key-123", srv.URL)
	_, err := r.GenerateContent(context.Background(), "hello")
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	_, err := Noop{}.GenerateContent(context.Background(), "anything")
	require.ErrorIs(t, err, ErrDisabled)
}
