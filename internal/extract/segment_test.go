package extract_test

import (
	"strings"
	"testing"

	"github.com/jonesrussell/shogo/internal/extract"
)

// ---------- segmentMixed tests ----------

func TestSegmentMixed_CutsAtRoleWord(t *testing.T) {
	t.Parallel()

	got, ok := extract.SegmentMixed("株式会社サンプル 代表取締役 山田太郎")
	if !ok || got != "株式会社サンプル" {
		t.Fatalf("got %q (ok=%v), want 株式会社サンプル", got, ok)
	}
}

func TestSegmentMixed_CutsAtPostalMark(t *testing.T) {
	t.Parallel()

	got, ok := extract.SegmentMixed("株式会社サンプル〒100-0001東京都千代田区")
	if !ok || got != "株式会社サンプル" {
		t.Fatalf("got %q (ok=%v), want 株式会社サンプル", got, ok)
	}
}

func TestSegmentMixed_CutsAtPrefecture(t *testing.T) {
	t.Parallel()

	got, ok := extract.SegmentMixed("株式会社サンプル東京都千代田区丸の内一丁目")
	if !ok || got != "株式会社サンプル" {
		t.Fatalf("got %q (ok=%v), want 株式会社サンプル", got, ok)
	}
}

func TestSegmentMixed_SeparatorOrderPrefersRoleWords(t *testing.T) {
	t.Parallel()

	// 所在地 appears before 東京都 in the text; the separator table is
	// consulted in priority order, so 所在地 cuts first either way.
	got, ok := extract.SegmentMixed("株式会社サンプル所在地東京都千代田区")
	if !ok || got != "株式会社サンプル" {
		t.Fatalf("got %q (ok=%v), want 株式会社サンプル", got, ok)
	}
}

func TestSegmentMixed_ShortTextWithoutSeparator(t *testing.T) {
	t.Parallel()

	got, ok := extract.SegmentMixed("株式会社サンプル")
	if !ok || got != "株式会社サンプル" {
		t.Fatalf("got %q (ok=%v), want the input back", got, ok)
	}
}

func TestSegmentMixed_LongTextWithoutSeparatorFails(t *testing.T) {
	t.Parallel()

	if got, ok := extract.SegmentMixed(strings.Repeat("あ", 51)); ok {
		t.Fatalf("expected long unseparated text to fail, got %q", got)
	}
}

func TestSegmentMixed_EmptyFails(t *testing.T) {
	t.Parallel()

	if _, ok := extract.SegmentMixed("   "); ok {
		t.Fatal("expected blank input to fail")
	}
}

// ---------- splitSmartDelimiter tests ----------

func TestSplitSmartDelimiter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"ideographic space", "株式会社サンプル　信頼の調査力", "株式会社サンプル", true},
		{"single space marker last", "信頼と実績 株式会社サンプル", "株式会社サンプル", true},
		{"double space", "株式会社サンプル  東京支社", "株式会社サンプル", true},
		{
			"professional form before slogan",
			"弁護士法人八千代佐倉総合法律事務所　八千代や佐倉、印西での弁護士相談ならおまかせ",
			"弁護士法人八千代佐倉総合法律事務所",
			true,
		},
		{"no delimiter", "株式会社サンプル", "", false},
		{"no marker part", "信頼 実績", "", false},
	}
	for _, tc := range cases {
		got, ok := extract.SplitSmartDelimiter(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("%s: SplitSmartDelimiter(%q) = %q, %v; want %q, %v",
				tc.name, tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

// ---------- extractComplexFormat tests ----------

func TestExtractComplexFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"labeled parenthetical", "ご挨拶（会社名：株式会社サンプル）", "株式会社サンプル"},
		{"labeled with ascii colon", "（商号: 有限会社タナカ）", "有限会社タナカ"},
		{"abbreviation stripped", "株式会社国際興業大阪（略称：KKO）", "株式会社国際興業大阪"},
		{"bare abbreviation stripped", "株式会社サンプル（略）", "株式会社サンプル"},
		{"plain text unchanged", "株式会社サンプル", "株式会社サンプル"},
	}
	for _, tc := range cases {
		if got := extract.ExtractComplexFormat(tc.in); got != tc.want {
			t.Fatalf("%s: ExtractComplexFormat(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
