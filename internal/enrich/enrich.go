// Package enrich fetches a candidate's public website and extracts the bits
// useful for outreach context: page title and meta description.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the HTTP request timeout for enrichment fetches.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for enrichment requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SignalAgent/1.0)"

// maxDescriptionLength truncates absurdly long meta descriptions.
const maxDescriptionLength = 300

// WebsiteSummary holds what was extracted from a candidate's site.
type WebsiteSummary struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Error represents a failure fetching or parsing a website.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("enrich error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("enrich error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures enrichment fetches.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// Website fetches rawURL and extracts a summary. GitHub profile "blog"
// fields often omit the scheme; a bare host is assumed to be https.
func Website(ctx context.Context, rawURL string, opts *Options) (*WebsiteSummary, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalized, nil)
	if err != nil {
		return nil, &Error{URL: normalized, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: normalized, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: normalized, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &Error{URL: normalized, Message: "failed to parse HTML", Cause: err}
	}

	return summarize(normalized, doc), nil
}

func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return parsed.String(), nil
}

func summarize(pageURL string, doc *goquery.Document) *WebsiteSummary {
	summary := &WebsiteSummary{URL: pageURL}

	summary.Title = strings.TrimSpace(doc.Find("title").First().Text())

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		summary.Description = strings.TrimSpace(desc)
	}
	if summary.Description == "" {
		if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
			summary.Description = strings.TrimSpace(desc)
		}
	}
	if runes := []rune(summary.Description); len(runes) > maxDescriptionLength {
		summary.Description = string(runes[:maxDescriptionLength])
	}
	return summary
}
