package siteinfo_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/shogo/internal/siteinfo"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractEmail_Mailto(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
<a href="mailto:Info@Example-Company.co.jp?subject=hello">メールはこちら</a>
<p>本文 other@elsewhere.jp</p>
</body></html>`)

	assert.Equal(t, "info@example-company.co.jp", siteinfo.ExtractEmail(doc))
}

func TestExtractEmail_TextFallback(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><p>お問い合わせ: soumu@tanaka-kogyo.jp まで</p></body></html>`)

	assert.Equal(t, "soumu@tanaka-kogyo.jp", siteinfo.ExtractEmail(doc))
}

func TestExtractEmail_Obfuscated(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><p>連絡先: info [at] yamada.co.jp</p></body></html>`)

	assert.Equal(t, "info@yamada.co.jp", siteinfo.ExtractEmail(doc))
}

func TestExtractEmail_SkipsNoise(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><p>user@example.com</p></body></html>`)

	assert.Empty(t, siteinfo.ExtractEmail(doc))
}

func TestFindInquiryPage_ByText(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
<a href="/about.html">会社概要</a>
<a href="/otoiawase.html">お問い合わせ</a>
</body></html>`)

	got := siteinfo.FindInquiryPage(doc, "https://example.co.jp/index.html")
	assert.Equal(t, "https://example.co.jp/otoiawase.html", got)
}

func TestFindInquiryPage_ByHref(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><a href="https://example.co.jp/contact/">こちら</a></body></html>`)

	got := siteinfo.FindInquiryPage(doc, "https://example.co.jp/")
	assert.Equal(t, "https://example.co.jp/contact/", got)
}

func TestFindInquiryPage_SkipsMailtoAndAnchors(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
<a href="mailto:contact@example.jp">お問い合わせ</a>
<a href="#contact">お問い合わせ</a>
</body></html>`)

	assert.Empty(t, siteinfo.FindInquiryPage(doc, "https://example.jp/"))
}

func TestFindInquiryPage_OnPageFormWinsOverLink(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
<a href="/contact/">お問い合わせ</a>
<form action="/inquiry/send.php" id="inquiry-form">
<input type="text" name="company"><button type="submit">送信</button>
</form>
</body></html>`)

	got := siteinfo.FindInquiryPage(doc, "https://example.co.jp/")
	assert.Equal(t, "https://example.co.jp/inquiry/send.php", got)
}

func TestFindInquiryPage_IgnoresUnrelatedForms(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
<form action="/search" id="site-search"><input type="text" name="q"></form>
</body></html>`)

	assert.Empty(t, siteinfo.FindInquiryPage(doc, "https://example.co.jp/"))
}

func TestDetectIndustry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"construction from title",
			`<html><head><title>田中建設｜土木と建築工事</title></head>
<body><p>ようこそ。</p></body></html>`,
			"construction",
		},
		{
			"healthcare from meta description",
			`<html><head><meta name="description" content="地域の医療を支えるクリニック。診療所のご案内。"></head>
<body><p>ようこそ。</p></body></html>`,
			"healthcare",
		},
		{
			"jsonld beats text",
			`<html><head><title>株式会社テスト 不動産と賃貸</title>
<script type="application/ld+json">{"@type":"Organization","industry":"システム開発とクラウドのIT企業"}</script>
</head><body></body></html>`,
			"technology",
		},
		{
			"schema type mapping",
			`<html><head>
<script type="application/ld+json">{"@type":"Store","name":"テストストア"}</script>
</head><body></body></html>`,
			"retail",
		},
		{
			"no signal",
			`<html><body><p>こんにちは。</p></body></html>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, siteinfo.DetectIndustry(parseDoc(t, tt.html)))
		})
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><head><title>株式会社テスト運送</title></head><body>
<a href="mailto:info@test-unsou.jp">メール</a>
<a href="/contact">お問い合わせ</a>
<p>物流と配送のことなら株式会社テスト運送。倉庫も完備。運送実績多数。</p>
</body></html>`)

	info := siteinfo.Collect(doc, "https://test-unsou.jp/")

	assert.Equal(t, "info@test-unsou.jp", info.Email)
	assert.Equal(t, "https://test-unsou.jp/contact", info.InquiryURL)
	assert.Equal(t, "logistics", info.Industry)
}
