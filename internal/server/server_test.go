package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listplicity-intake-backend/internal/config"
	"listplicity-intake-backend/internal/types"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Config{
		Port:          "0",
		Model:         "gpt-4o-mini",
		AllowedOrigin: "*",
		PromptFile:    filepath.Join(t.TempDir(), "absent.yaml"), // built-in default spec
		StaticDir:     t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "openai", out.Provider)
	assert.False(t, out.LLM, "no credential configured")
}

func TestHealthReportsCredential(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.OpenAIAPIKey = "sk-test" })
	rec := doJSON(t, s, http.MethodGet, "/api/health", "")

	var out types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.LLM)
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/welcome", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "welcome", out["intent"])
	assert.NotEmpty(t, out["bot_text"])
	assert.Equal(t, map[string]any{}, out["state_patch"])
	assert.Nil(t, out["cta"])
	assert.Nil(t, out["action"])
}

func TestChatWithoutCredentialStillRenders(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"history": [{"role": "user", "content": "hi"}], "state": {}}`
	rec := doJSON(t, s, http.MethodPost, "/api/chat", body)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var out types.StructuredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, types.IntentCollectInfo, out.Intent)
	assert.NotEmpty(t, out.BotText)
	assert.Nil(t, out.Action)
}

func TestChatRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/chat", "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var out types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "invalid JSON body", out.Error)
}

func TestLeadMissingWebhook(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/lead", `{"name": "Jo"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var out types.LeadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.OK)
	assert.Equal(t, "missing_webhook", out.Error)
}

func TestLeadForwarded(t *testing.T) {
	var got map[string]any
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer webhook.Close()

	s := newTestServer(t, func(c *config.Config) { c.LeadWebhookURL = webhook.URL })
	rec := doJSON(t, s, http.MethodPost, "/api/lead", `{"name": "Jo", "email": "jo@x.com", "path": "buy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out types.LeadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "listplicity-chatbot", got["source"])
}

func TestLeadForwardFailed(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer webhook.Close()

	s := newTestServer(t, func(c *config.Config) { c.LeadWebhookURL = webhook.URL })
	rec := doJSON(t, s, http.MethodPost, "/api/lead", `{"name": "Jo"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var out types.LeadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.OK)
	assert.Equal(t, "forward_failed", out.Error)
}

func TestDiagWithoutCredential(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/diag", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out types.DiagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "openai", out.Provider)
	assert.False(t, out.HasKey)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.Empty(t, out.Diag.Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hi</h1>"), 0o600))

	s := newTestServer(t, func(c *config.Config) { c.StaticDir = dir })
	rec := doJSON(t, s, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>hi</h1>")
}
