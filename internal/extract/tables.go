package extract

import "strings"

// Static label and marker tables. All tables are read-only after load and
// safe for unsynchronized concurrent reads. Declaration order is
// significant: classifiers and scanners iterate in order and stop at the
// first match.

// legalEntityMarkers are the fixed-form tokens indicating a business's
// legal form. A value containing one is trusted at the top structural
// confidence and is exempt from auto-completion.
var legalEntityMarkers = []string{
	"株式会社",
	"有限会社",
	"合同会社",
	"合資会社",
	"合名会社",
	"一般社団法人",
	"一般財団法人",
	"公益社団法人",
	"公益財団法人",
	"特定非営利活動法人",
	"学校法人",
	"医療法人",
	"社会医療法人",
	"社会福祉法人",
	"宗教法人",
	"労働組合",
	"組合",
	"行政書士",
	"弁護士",
	"司法書士",
	"税理士",
	"公認会計士",
}

// longFormMarkers get the relaxed 80-rune length bound: NPO and
// association names routinely exceed the 30-rune commercial bound.
var longFormMarkers = []string{
	"一般社団法人",
	"一般財団法人",
	"公益社団法人",
	"公益財団法人",
	"特定非営利活動法人",
	"社会福祉法人",
	"学校法人",
	"医療法人",
	"社会医療法人",
	"宗教法人",
}

// primaryLabels are field labels that directly announce a company name.
// Spaced variants appear as written on real pages.
var primaryLabels = []string{
	"会社名",
	"商号",
	"法人名",
	"企業名",
	"正式名称",
	"名称",
	"社名",
	"事業者名",
	"法人の名称",
	"屋号",
	"法人名称",
	"運営会社",
	"運営法人",
	"事務所名",
	"事務所",
	"店舗名",
	"施設名",
	"商　号",
	"会 社 名",
	"称号",
	"社　名",
}

// secondaryLabels are weaker name-ish labels accepted at a lower boost.
var secondaryLabels = []string{
	"名前",
	"会社",
	"名",
	"Company",
	"Name",
	"company name",
}

// excludedLabels disqualify a row outright: they tag prices, schedules,
// media credits, memberships, and contact fields that malformed pages
// often interleave with name rows.
var excludedLabels = []string{
	"項目",
	"単位",
	"価格",
	"料金",
	"費用",
	"時間",
	"金額",
	"item",
	"price",
	"cost",
	"fee",
	"amount",
	"メディア名",
	"番組名",
	"放送局",
	"タイトル",
	"出演",
	"media",
	"program",
	"title",
	"show",
	"broadcast",
	"加盟団体",
	"所属団体",
	"affiliated",
	"member of",
	"血液型",
	"趣味",
	"TEL",
	"FAX",
	"電話番号",
	"メールアドレス",
}

// overviewQualifiers force a secondary label to no-match: "会社概要" labels
// a section, not a name field.
var overviewQualifiers = []string{"概要", "について", "とは"}

// affiliateTableKeywords skip tables beyond the first that list related
// companies rather than the company itself.
var affiliateTableKeywords = []string{
	"加盟",
	"所属",
	"関連会社",
	"グループ会社",
	"取引先",
	"パートナー",
}

// garbagePhrases reject navigational and descriptive fragments that slip
// through label matching.
var garbagePhrases = []string{
	"からの独立",
	"の要項",
	"の事業",
	"のアクセス",
	"の会社",
	"を含む",
	"グループ会社",
	"代表",
	"社長",
	"住所",
	"屋号",
	"事業内容",
	"概要",
	"に相談",
	"に伝える",
	"ページトップ",
	"へ戻る",
}

// mixedTextSeparators cut a value that still carries address or contact
// text. Priority order: role words, then location fields, then every
// prefecture, then municipal suffixes.
var mixedTextSeparators = []string{
	"代表",
	"所在地",
	"住所",
	"電話",
	"TEL",
	"〒",
	"東京都",
	"大阪府",
	"京都府",
	"北海道",
	"千葉県",
	"神奈川県",
	"埼玉県",
	"茨城県",
	"栃木県",
	"群馬県",
	"宮城県",
	"福島県",
	"山形県",
	"岩手県",
	"秋田県",
	"青森県",
	"愛知県",
	"静岡県",
	"岐阜県",
	"三重県",
	"長野県",
	"山梨県",
	"福岡県",
	"佐賀県",
	"長崎県",
	"熊本県",
	"大分県",
	"宮崎県",
	"鹿児島県",
	"沖縄県",
	"広島県",
	"岡山県",
	"鳥取県",
	"島根県",
	"山口県",
	"兵庫県",
	"奈良県",
	"和歌山県",
	"滋賀県",
	"新潟県",
	"富山県",
	"石川県",
	"福井県",
	"香川県",
	"徳島県",
	"愛媛県",
	"高知県",
	"市",
	"区",
	"町",
	"村",
}

// businessKeywords identify office-style company names in headings and
// titles when no labeled structure exists.
var businessKeywords = []string{
	"探偵事務所",
	"調査事務所",
	"探偵社",
	"調査会社",
	"法律事務所",
	"会計事務所",
	"コンサルティング",
}

// seoSkipPhrases mark heading/title segments that are marketing copy, not
// names.
var seoSkipPhrases = []string{
	"ご相談",
	"お問い合わせ",
	"ください",
	"はこちら",
	"選び",
}

// seoSuffixes are stripped from the tail of heading/title segments.
var seoSuffixes = []string{
	"保険調査",
	"調査会社",
	"不動産",
	"建設",
	"コンサルティング",
	"システム開発",
	"福岡",
	"東京",
	"大阪",
	"名古屋",
	"札幌",
	"仙台",
	"横浜",
	"京都",
	"神戸",
	"広島",
}

// introductionSuffixes end a heading that introduces the company;
// the text before the suffix is the name candidate.
var introductionSuffixes = []string{
	"のご紹介",
	"の紹介",
	"のご案内",
	"の案内",
	"の概要",
	"について",
}

// introductionWords combine with an office type inside a heading
// ("〇〇事務所のご紹介").
var introductionWords = []string{
	"紹介",
	"ご紹介",
	"案内",
	"ご案内",
	"概要",
}

// officeTypes are the office-style name tails the introduction pattern
// anchors on.
var officeTypes = []string{
	"法律事務所",
	"会計事務所",
	"探偵事務所",
	"調査事務所",
	"事務所",
}

// brandIndicators make a value ineligible for auto-completion: brand and
// service names are not legal entities.
var brandIndicators = []string{
	"ドットコム",
	"ドット",
	".com",
	"さん",
	"くん",
	"ちゃん",
	"オンライン",
	"ネット",
	"web",
	"Web",
}

// locationSuffixes make a value ineligible for auto-completion when it
// ends with one (a city-qualified service name, not an entity).
var locationSuffixes = []string{
	" 京都",
	" 東京",
	" 大阪",
	" 福岡",
	" 札幌",
}

// formFieldMarkers appear in form labels and disqualify a value.
var formFieldMarkers = []string{
	"※必須",
	"必須",
	"※",
	"任意",
	"required",
}

// sentenceEndings reject sentence fragments posing as names.
var sentenceEndings = []string{"ます", "です", "ください", "ませ"}

// connectiveParticles reject prose: two or more distinct occurrences mean
// the text is a clause, not a name.
var connectiveParticles = []string{"にて", "から", "まで", "なら", "への"}

// abbreviationMarkers flag a fully-formed name that carries its own
// abbreviation ("株式会社〇〇（略称：〇〇）").
var abbreviationMarkers = []string{"略称", "略"}

// auxHrefHints select same-site links likely to lead to a company page.
var auxHrefHints = []string{"info", "outline", "profile", "gaiyou", "company", "about"}

// auxTextHints select links by their anchor text.
var auxTextHints = []string{"会社情報", "会社概要", "企業情報", "概要", "about"}

// auxCommonPaths are probed even when no matching link is present.
var auxCommonPaths = []string{
	"/company",
	"/company/",
	"/about",
	"/about/",
	"/company/info.html",
	"/company/outline.html",
	"/gaiyou",
	"/gaiyou.html",
	"/kaisya.html",
}

// listLabelClassHints and listValueClassHints identify the label and value
// children of a list row by class-name fragments, matching the cell naming
// conventions of hand-built profile markup.
var (
	listLabelClassHints = []string{"name", "tit", "label", "head", "dt"}
	listValueClassHints = []string{"data", "txt", "value", "cont", "dd"}
)

// markerGlyph opens a labeled block in glyph-marker layouts.
const markerGlyph = "■"

// licensePrefix precedes the entity name in "認可の..." phrasings; text
// after it is the candidate start.
const licensePrefix = "認可の"

// defaultLegalMarker is prepended when auto-completion finds no marker
// anywhere on the page.
const defaultLegalMarker = "株式会社"

// hasLegalMarker reports whether the text contains any legal-entity marker.
func hasLegalMarker(s string) bool {
	for _, m := range legalEntityMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// startsWithLegalMarker returns the marker the text begins with, if any.
func startsWithLegalMarker(s string) (string, bool) {
	for _, m := range legalEntityMarkers {
		if strings.HasPrefix(s, m) {
			return m, true
		}
	}
	return "", false
}

// hasLongFormMarker reports whether the text contains an NPO or
// association-class marker.
func hasLongFormMarker(s string) bool {
	for _, m := range longFormMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
