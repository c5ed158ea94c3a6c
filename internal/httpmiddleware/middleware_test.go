package httpmiddleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderAndLogger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent") + "|" + r.Header.Get("X-Cg-Demo-Api-Key")))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := NewClient(5*time.Second,
		Logger(logger, LogOptions{MaxBody: 4}),
		UserAgent("journal-bot"),
		Header("x-cg-demo-api-key", "secret"),
	)

	resp, err := client.Get(srv.URL + "/coins?x_cg_demo_api_key=secret")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "journal-bot|secret", string(body))

	assert.Contains(t, logs.String(), "HTTP response")
	assert.Contains(t, logs.String(), "status=200")
	assert.NotContains(t, logs.String(), "=secret")
}

func TestHeaderEmptyValueIsNoop(t *testing.T) {
	var called bool
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		assert.Empty(t, req.Header.Get("X-Test"))
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Chain(base, Header("X-Test", ""))
	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)

	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRedactURL(t *testing.T) {
	u, _ := url.Parse("https://api.example.com/x?category=ai&api_key=abc")
	assert.Equal(t, "https://api.example.com/x?api_key=%5BREDACTED%5D&category=ai", redactURL(u))
}

func TestRedactBotToken(t *testing.T) {
	u, _ := url.Parse("https://api.telegram.org/bot123456:AAH-x_y/sendMessage")
	assert.Equal(t, "https://api.telegram.org/bot[REDACTED]/sendMessage", redactURL(u))
}
