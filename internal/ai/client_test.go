package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/shogo/internal/ai"
	"github.com/jonesrussell/shogo/internal/extract"
)

const testPage = `<html><body><main>
<h1>ごあいさつ</h1>
<p>私たち株式会社モックは、テスト用のページを提供しています。</p>
</main></body></html>`

func chatResponseBody(t *testing.T, content string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *ai.Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := ai.New(ai.Config{
		Provider: ai.ProviderGroq,
		APIKey:   "test-key",
		Model:    "test-model",
		BaseURL:  srv.URL,
	}, nil)
	require.NoError(t, err)
	return srv, client
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := ai.New(ai.Config{Model: "m", BaseURL: "http://x"}, nil)
	assert.ErrorIs(t, err, ai.ErrMissingAPIKey)

	_, err = ai.New(ai.Config{APIKey: "k", Model: "m"}, nil)
	assert.ErrorIs(t, err, ai.ErrMissingBaseURL)

	_, err = ai.New(ai.Config{APIKey: "k", BaseURL: "http://x"}, nil)
	assert.ErrorIs(t, err, ai.ErrMissingModel)
}

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody []byte

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = json.Marshal(readRequest(t, r))
		_, _ = w.Write(chatResponseBody(t, `{"value": "株式会社モック", "confidence": 0.9, "reason": "本文に記載"}`))
	})

	suggestion, err := client.Extract(context.Background(), testPage, extract.FieldSpec{
		Name:        "company_name",
		Description: "運営会社の正式名称",
	})
	require.NoError(t, err)

	assert.Equal(t, "株式会社モック", suggestion.Value)
	assert.InDelta(t, 0.9, suggestion.Confidence, 1e-9)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, string(gotBody), "company_name")
	assert.Contains(t, string(gotBody), "株式会社モック", "page content should reach the model")
}

func readRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func TestExtract_ProviderError(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "auth"}}`))
	})

	_, err := client.Extract(context.Background(), testPage, extract.FieldSpec{Name: "company_name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestExtract_EmptyChoices(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Extract(context.Background(), testPage, extract.FieldSpec{Name: "company_name"})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestFocusContent(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>フォーカス | 公式サイト</title>
<meta property="og:site_name" content="フォーカス">
</head><body>
<nav>ホーム | 会社概要 | お問い合わせ</nav>
<script>var x = 1;</script>
<main><h1>株式会社フォーカス</h1><p>本文です。</p></main>
<footer>Copyright 株式会社フォーカス</footer>
</body></html>`

	got := ai.FocusContent(html, 0)
	assert.Contains(t, got, "[TITLE]\nフォーカス | 公式サイト")
	assert.Contains(t, got, "[OG:SITE_NAME]\nフォーカス")
	assert.Contains(t, got, "[FOOTER]\nCopyright 株式会社フォーカス", "copyright line carries the operator name")
	assert.Contains(t, got, "[H1-1]\n株式会社フォーカス")
	assert.Contains(t, got, "本文です。")
	assert.NotContains(t, got, "var x")
	assert.NotContains(t, got, "ホーム |", "nav chrome stays out of the focused body")
}

func TestFocusContent_CapsLength(t *testing.T) {
	t.Parallel()

	html := "<html><body><main>" + strings.Repeat("あ", 500) + "</main></body></html>"

	got := ai.FocusContent(html, 100)
	assert.LessOrEqual(t, len([]rune(got)), 100)
}
