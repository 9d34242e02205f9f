// Package helpers provides testing utilities for integration tests.
package helpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
)

// MockCompanySite creates a mock company website for pipeline tests.
// The map key is the URL path, and the value is the HTML served there.
// Unknown paths return 404.
func MockCompanySite(content map[string]string) *httptest.Server {
	mux := http.NewServeMux()

	if len(content) == 0 {
		content = map[string]string{
			"/": CompanyProfilePage("株式会社テスト商事"),
		}
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		html, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	})

	return httptest.NewServer(mux)
}

// CompanyProfilePage renders a minimal company profile with a labeled
// definition list, the strongest structure the extractor recognizes.
func CompanyProfilePage(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>会社概要</title></head>
<body>
<h1>会社概要</h1>
<dl>
  <dt>会社名</dt><dd>%s</dd>
  <dt>所在地</dt><dd>東京都千代田区1-1-1</dd>
  <dt>設立</dt><dd>1998年4月</dd>
</dl>
<p>お問い合わせは <a href="mailto:info@test-shoji.co.jp">info@test-shoji.co.jp</a> まで。</p>
</body>
</html>`, name)
}

// RobotsAllowAll is a permissive robots.txt body.
const RobotsAllowAll = "User-agent: *\nAllow: /\n"
