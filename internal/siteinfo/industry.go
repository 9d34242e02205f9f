package siteinfo

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// industryKeywords maps a coarse industry label to the Japanese
// vocabulary that signals it. Order matters: earlier entries win ties.
var industryKeywords = []struct {
	label    string
	keywords []string
}{
	{"technology", []string{"IT", "情報技術", "ソフトウェア", "テクノロジー", "システム開発", "クラウド", "AI", "人工知能", "情報システム", "システムインテグレーション"}},
	{"finance", []string{"金融", "銀行", "保険", "証券", "投資", "資産運用", "ファイナンス", "信用金庫", "信用組合", "証券会社"}},
	{"retail", []string{"小売", "ショップ", "店舗", "EC", "ECサイト", "オンラインショップ", "通販", "ネットショップ", "百貨店", "スーパー"}},
	{"healthcare", []string{"医療", "病院", "クリニック", "ヘルスケア", "製薬", "薬品", "医療機器", "診療所", "医院", "薬局"}},
	{"education", []string{"教育", "学校", "大学", "学習", "トレーニング", "アカデミー", "スクール", "塾", "予備校", "専門学校"}},
	{"manufacturing", []string{"製造", "工場", "生産", "工業", "メーカー", "製造業", "生産管理", "工場管理"}},
	{"construction", []string{"建設", "建築", "工事", "土木", "エンジニアリング", "建築設計", "施工管理"}},
	{"real_estate", []string{"不動産", "住宅", "マンション", "土地", "賃貸", "不動産管理", "宅地建物取引"}},
	{"food", []string{"食品", "レストラン", "飲食", "外食", "飲料", "フードサービス", "食品製造", "食品加工"}},
	{"automotive", []string{"自動車", "車", "カー", "モビリティ", "自動車関連", "自動車部品", "自動車販売"}},
	{"energy", []string{"エネルギー", "電力", "電気", "再生可能エネルギー", "太陽光", "風力", "発電", "電力会社"}},
	{"logistics", []string{"物流", "運輸", "配送", "輸送", "サプライチェーン", "運送", "倉庫", "物流センター"}},
	{"consulting", []string{"コンサルティング", "コンサル", "アドバイザリー", "経営コンサル", "経営相談"}},
	{"media", []string{"メディア", "出版", "放送", "エンターテインメント", "広告", "広告代理店", "テレビ", "ラジオ"}},
	{"telecommunications", []string{"通信", "テレコム", "モバイル", "無線", "通信事業", "通信会社", "携帯電話"}},
}

// schemaTypeIndustries maps schema.org @type values to industry labels.
// "Organization" is deliberately absent; it is too generic to classify.
var schemaTypeIndustries = map[string]string{
	"softwareapplication": "technology",
	"financialservice":    "finance",
	"store":               "retail",
	"hospital":            "healthcare",
	"school":              "education",
}

// DetectIndustry classifies the site into a coarse industry label, or
// empty when nothing matches. Sources are checked in trust order:
// JSON-LD structured data, then meta description and keywords, then
// visible title and heading text.
func DetectIndustry(doc *goquery.Document) string {
	if industry := industryFromJSONLD(doc); industry != "" {
		return industry
	}
	if industry := industryFromMetadata(doc); industry != "" {
		return industry
	}
	return industryFromText(doc)
}

func industryFromJSONLD(doc *goquery.Document) string {
	found := ""
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if industry := industryFromJSON(data); industry != "" {
			found = industry
			return false
		}
		return true
	})
	return found
}

func industryFromJSON(data any) string {
	switch v := data.(type) {
	case map[string]any:
		for _, field := range []string{"industry", "sector", "businessType", "@type"} {
			raw, ok := v[field].(string)
			if !ok {
				continue
			}
			if industry := matchIndustryKeywords(raw); industry != "" {
				return industry
			}
		}
		if schemaType, ok := v["@type"].(string); ok {
			if industry, ok := schemaTypeIndustries[strings.ToLower(schemaType)]; ok {
				return industry
			}
		}
		for _, value := range v {
			switch value.(type) {
			case map[string]any, []any:
				if industry := industryFromJSON(value); industry != "" {
					return industry
				}
			}
		}
	case []any:
		for _, item := range v {
			if industry := industryFromJSON(item); industry != "" {
				return industry
			}
		}
	}
	return ""
}

func industryFromMetadata(doc *goquery.Document) string {
	descriptions := doc.Find(`meta[name="description"]`).AttrOr("content", "") + " " +
		doc.Find(`meta[property="og:description"]`).AttrOr("content", "")
	if industry := matchIndustryKeywords(descriptions); industry != "" {
		return industry
	}
	return matchIndustryKeywords(doc.Find(`meta[name="keywords"]`).AttrOr("content", ""))
}

func industryFromText(doc *goquery.Document) string {
	var sections []string
	sections = append(sections, doc.Find("title").Text())
	doc.Find("h1").Each(func(i int, s *goquery.Selection) {
		if i < 3 {
			sections = append(sections, s.Text())
		}
	})
	sections = append(sections, doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	return matchIndustryKeywords(strings.Join(sections, " "))
}

// matchIndustryKeywords scores each industry by the number of distinct
// keywords present and returns the best nonzero label.
func matchIndustryKeywords(text string) string {
	if text == "" {
		return ""
	}
	bestLabel := ""
	bestScore := 0
	for _, entry := range industryKeywords {
		score := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestLabel = entry.label
			bestScore = score
		}
	}
	return bestLabel
}
