package ai

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/jptext"
)

// contentSelectors are tried in order to find the readable core of a page.
var contentSelectors = []string{"main", "article", "#main", "#content", ".main", "body"}

// stripSelectors are removed before any text is collected; they carry no
// entity information and crowd out page text under the rune cap.
const stripSelectors = "script, style, noscript, iframe"

// Footer and header text usually carry the operator name in the copyright
// line, so both are kept but bounded.
const (
	footerCap = 400
	headerCap = 400
	maxH1s    = 3
)

// FocusContent reduces raw HTML to the regions most likely to name the
// operating company: title, og:site_name, footer and header text, the
// leading h1 headings, and a markdown rendering of the readable body.
// The result is capped at maxRunes.
func FocusContent(html string, maxRunes int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return capRunes(strings.TrimSpace(html), maxRunes)
	}
	doc.Find(stripSelectors).Remove()

	var parts []string
	section := func(tag, text string) {
		if text != "" {
			parts = append(parts, "["+tag+"]\n"+text)
		}
	}

	section("TITLE", jptext.NormalizeSpace(doc.Find("title").First().Text()))
	if site, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		section("OG:SITE_NAME", jptext.NormalizeSpace(site))
	}
	section("FOOTER", capRunes(jptext.NormalizeSpace(doc.Find("footer").First().Text()), footerCap))
	section("HEADER", capRunes(jptext.NormalizeSpace(doc.Find("header").First().Text()), headerCap))

	doc.Find("h1").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxH1s {
			return false
		}
		section(fmt.Sprintf("H1-%d", i+1), jptext.NormalizeSpace(sel.Text()))
		return true
	})

	section("BODY", bodyMarkdown(doc))

	return capRunes(strings.TrimSpace(strings.Join(parts, "\n\n")), maxRunes)
}

// bodyMarkdown renders the first matching content region as markdown,
// falling back to its plain text when conversion fails.
func bodyMarkdown(doc *goquery.Document) string {
	var core *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			core = sel
			break
		}
	}
	if core == nil {
		return ""
	}

	coreHTML, err := goquery.OuterHtml(core)
	if err != nil {
		return strings.TrimSpace(core.Text())
	}
	markdown, err := htmltomarkdown.ConvertString(coreHTML)
	if err != nil {
		return strings.TrimSpace(core.Text())
	}
	return strings.TrimSpace(markdown)
}

func capRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

const systemPrompt = `あなたはウェブページから企業情報を抽出する専門家です。` +
	`必ず次の形式のJSONのみで回答してください: ` +
	`{"value": "抽出した値または null", "confidence": 0.0から1.0の数値, "reason": "判断理由"}`

// buildMessages assembles the chat payload for one field extraction.
func buildMessages(content string, field extract.FieldSpec) []chatMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "以下のウェブページ本文から「%s」を抽出してください。\n", field.Name)
	if field.Description != "" {
		fmt.Fprintf(&b, "説明: %s\n", field.Description)
	}
	if len(field.Examples) > 0 {
		fmt.Fprintf(&b, "例: %s\n", strings.Join(field.Examples, "、"))
	}
	b.WriteString("見つからない場合は value を null にしてください。\n\n")
	b.WriteString("--- ページ本文 ---\n")
	b.WriteString(content)

	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
