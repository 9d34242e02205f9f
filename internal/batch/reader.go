// Package batch drives the enrichment pipeline over a list of input
// rows with a bounded worker pool and politeness delays between fetches.
package batch

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scanner limits for JSONL input. Rows may inline full page HTML.
const (
	scannerInitialBuffer = 64 * 1024
	scannerMaxBuffer     = 16 * 1024 * 1024
)

// Row is one input row describing a site to enrich.
type Row struct {
	// ID identifies the row in reports. Defaults to the record number.
	ID string `mapstructure:"id"`
	// URL is the site to fetch.
	URL string `mapstructure:"url"`
	// CompanyName is an optional known name from the source list. It is
	// carried through to the output untouched.
	CompanyName string `mapstructure:"company_name"`
	// HTML is optional pre-fetched markup. When set the fetch is skipped.
	HTML string `mapstructure:"html"`
}

// Column aliases seen in real-world input lists, matched after
// lowercasing. Japanese headers come from government and chamber of
// commerce company lists.
var (
	urlAliases  = []string{"url", "homepage", "トップページurl", "website", "link"}
	nameAliases = []string{"company_name", "companyname", "法人名", "会社名", "company", "name"}
	idAliases   = []string{"id", "row_id", "no"}
	htmlAliases = []string{"html", "raw_html", "content"}
)

// ReadRows loads rows from path, dispatching on the file extension.
// JSONL (.jsonl, .ndjson) and CSV (.csv) are supported. Rows without a
// URL are dropped.
func ReadRows(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".ndjson":
		return readJSONL(file)
	case ".csv":
		return readCSV(file)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .jsonl, .ndjson, or .csv)", ext)
	}
}

func readJSONL(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	var rows []Row
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		row, err := decodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if row.URL == "" {
			continue
		}
		if row.ID == "" {
			row.ID = strconv.Itoa(lineNo)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv input is empty")
	}

	header := records[0]
	if len(header) > 0 {
		// Excel exports prefix the first header cell with a BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []Row
	for i, record := range records[1:] {
		raw := make(map[string]any, len(header))
		for col, name := range header {
			if col < len(record) {
				raw[name] = record[col]
			}
		}
		row, decodeErr := decodeRow(raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, decodeErr)
		}
		if row.URL == "" {
			continue
		}
		if row.ID == "" {
			row.ID = strconv.Itoa(i + 1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeRow maps aliased keys onto the canonical Row fields. Weak typing
// tolerates numeric ids from spreadsheet exports.
func decodeRow(raw map[string]any) (Row, error) {
	canon := make(map[string]any, len(raw))
	for key, value := range raw {
		if ck := canonicalKey(key); ck != "" {
			canon[ck] = value
		}
	}

	var row Row
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &row,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Row{}, fmt.Errorf("failed to build row decoder: %w", err)
	}
	if err := dec.Decode(canon); err != nil {
		return Row{}, fmt.Errorf("failed to decode row: %w", err)
	}

	row.URL = ensureScheme(strings.TrimSpace(row.URL))
	row.CompanyName = strings.TrimSpace(row.CompanyName)
	return row, nil
}

func canonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case matchesAlias(k, urlAliases):
		return "url"
	case matchesAlias(k, nameAliases):
		return "company_name"
	case matchesAlias(k, idAliases):
		return "id"
	case matchesAlias(k, htmlAliases):
		return "html"
	case strings.Contains(k, "url") || strings.Contains(k, "homepage"):
		// Loose fallback for headers like 企業URL or "Homepage Address".
		return "url"
	}
	return ""
}

func matchesAlias(key string, aliases []string) bool {
	for _, alias := range aliases {
		if key == alias {
			return true
		}
	}
	return false
}

// ensureScheme defaults bare hostnames to https; input lists usually
// omit the scheme.
func ensureScheme(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}
