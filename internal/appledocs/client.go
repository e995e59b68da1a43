package appledocs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultBaseURL is the Apple Developer site root.
	defaultBaseURL = "https://developer.apple.com"

	// fetchTimeout bounds a single documentation or search request.
	fetchTimeout = 30 * time.Second

	// maxResponseBytes caps response bodies — documentation payloads are
	// generally well under this.
	maxResponseBytes = 10 << 20
)

// SearchResult is one hit from the documentation search page.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Client fetches Apple Developer documentation. The zero base URL means
// the production site; tests point it at a local server.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a documentation client. An empty baseURL selects the
// production Apple Developer site.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: fetchTimeout},
	}
}

// DataURL converts a documentation page URL into its JSON data API URL:
//
//	https://developer.apple.com/documentation/mapkit/mapview
//	  -> {base}/tutorials/data/documentation/mapkit/mapview.json
func (c *Client) DataURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("page URL %q has no path", pageURL)
	}
	return c.baseURL + "/tutorials/data/" + path + ".json", nil
}

// FetchPage downloads and parses the JSON payload for a documentation
// page URL.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	dataURL, err := c.DataURL(pageURL)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, dataURL)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(body)
	if err != nil {
		return nil, fmt.Errorf("parsing documentation payload for %s: %w", pageURL, err)
	}
	return page, nil
}

// FetchMarkdown fetches a page and renders it as markdown in one step.
func (c *Client) FetchMarkdown(ctx context.Context, pageURL string) (string, error) {
	page, err := c.FetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(page), nil
}

// Search queries the documentation search page and extracts result links.
// The search page is HTML; results are recognized by their /documentation/
// hrefs, so layout changes degrade to fewer results rather than errors.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	searchURL := c.baseURL + "/search/?q=" + url.QueryEscape(query) + "&type=Documentation"

	body, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(string(body), c.baseURL), nil
}

// get performs one bounded GET and returns the body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "appledocs-mcp")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	return body, nil
}

// parseSearchResults scans search page HTML for documentation links. A
// tolerant string scan, not a full HTML parse — the page structure is not
// a stable contract.
func parseSearchResults(html, base string) []SearchResult {
	var results []SearchResult
	seen := map[string]bool{}

	rest := html
	for {
		idx := strings.Index(rest, `href="/documentation/`)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(`href="`):]

		end := strings.IndexByte(rest, '"')
		if end < 0 {
			break
		}
		href := rest[:end]
		rest = rest[end:]

		// Link text follows the closing of the anchor's open tag.
		title := ""
		if gt := strings.IndexByte(rest, '>'); gt >= 0 {
			tail := rest[gt+1:]
			if lt := strings.IndexByte(tail, '<'); lt >= 0 {
				title = strings.TrimSpace(tail[:lt])
			}
		}

		if seen[href] {
			continue
		}
		seen[href] = true
		if title == "" {
			title = href
		}
		results = append(results, SearchResult{
			Title: title,
			URL:   base + href,
		})
	}
	return results
}
