package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/shogo/internal/extract"
	"github.com/jonesrussell/shogo/internal/logger"
	"github.com/jonesrussell/shogo/internal/siteinfo"
)

// ExtractRequest is the extraction request body. HTML is optional; when
// empty the server fetches the URL itself.
type ExtractRequest struct {
	URL  string `json:"url" binding:"required"`
	HTML string `json:"html"`
}

// ExtractResponse mirrors the record shape batch runs persist, so API
// consumers and sink consumers read the same fields.
type ExtractResponse struct {
	URL        string         `json:"url"`
	FinalURL   string         `json:"final_url,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Company    extract.Result `json:"company"`
	Site       siteinfo.Info  `json:"site"`
	ElapsedMS  int64          `json:"elapsed_ms"`
}

// handleExtract creates a handler for extraction requests
func handleExtract(engine Extractor, fetcher Fetcher, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request payload")
			return
		}

		start := time.Now()
		resp := ExtractResponse{URL: req.URL}

		html := req.HTML
		pageURL := req.URL
		if html == "" {
			if fetcher == nil {
				respondInternalError(c, "no fetcher configured")
				return
			}
			page, err := fetcher.FetchPage(c.Request.Context(), req.URL)
			if err != nil {
				log.Warn("fetch failed", "url", req.URL, "error", err)
				respondError(c, http.StatusBadGateway, "fetch failed: "+err.Error())
				return
			}
			html = page.Content
			resp.FinalURL = page.FinalURL
			resp.StatusCode = page.StatusCode
			if page.FinalURL != "" {
				pageURL = page.FinalURL
			}
		}

		if result := engine.Extract(c.Request.Context(), html, pageURL); result != nil {
			resp.Company = *result
		}

		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			resp.Site = siteinfo.Collect(doc, pageURL)
		}

		resp.ElapsedMS = time.Since(start).Milliseconds()
		c.JSON(http.StatusOK, resp)
	}
}
