// Package readability fetches full article pages and extracts the
// readable body, for items whose feed entry carries only a summary.
package readability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goreadability "github.com/go-shiori/go-readability"

	"github.com/medwire/newscore/internal/logger"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 5 << 20
	userAgent      = "newscore/1.0 (+https://github.com/medwire/newscore)"

	// Extractions shorter than this are treated as failures; a cookie
	// banner or paywall stub is not an article.
	minContentLength = 200
)

// ErrExtraction marks pages we fetched but could not extract a usable
// article from.
var ErrExtraction = errors.New("article extraction failed")

// Article is the extracted readable content of one page.
type Article struct {
	Title                string `json:"title"`
	Content              string `json:"content"`
	TextContent          string `json:"text_content"`
	Byline               string `json:"byline,omitempty"`
	SiteName             string `json:"site_name,omitempty"`
	FullContentAvailable bool   `json:"full_content_available"`
}

// Extractor fetches and parses article pages.
type Extractor struct {
	client *http.Client
	logger logger.Logger
}

// New creates an extractor. A nil client gets a default with a timeout.
func New(client *http.Client, log logger.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{client: client, logger: log}
}

// FetchArticle downloads the page at rawURL and extracts its readable
// body. FullContentAvailable is false when extraction produced nothing
// usable but the page itself loaded.
func (e *Extractor) FetchArticle(ctx context.Context, rawURL string) (Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return Article{}, fmt.Errorf("%w: invalid url %q", ErrExtraction, rawURL)
	}

	body, err := e.fetch(ctx, pageURL.String())
	if err != nil {
		return Article{}, err
	}

	return e.Extract(body, pageURL)
}

// Extract runs readability over already-fetched HTML.
func (e *Extractor) Extract(html string, pageURL *url.URL) (Article, error) {
	parsed, err := goreadability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	article := Article{
		Title:       strings.TrimSpace(parsed.Title),
		Content:     strings.TrimSpace(parsed.Content),
		TextContent: strings.TrimSpace(parsed.TextContent),
		Byline:      strings.TrimSpace(parsed.Byline),
		SiteName:    strings.TrimSpace(parsed.SiteName),
	}
	article.FullContentAvailable = len(article.TextContent) >= minContentLength

	if !article.FullContentAvailable {
		e.logger.Debug("extraction yielded negligible content",
			logger.String("url", pageURL.String()),
			logger.Int("text_length", len(article.TextContent)),
		)
	}
	return article, nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
