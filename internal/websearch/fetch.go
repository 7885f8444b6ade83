package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/codefionn/werkbank/internal/logger"
)

// fetchMaxBodyBytes caps downloaded pages so a huge document cannot
// overwhelm the chat view.
const fetchMaxBodyBytes = 1_000_000

// FetchResult carries a fetched page converted to markdown.
type FetchResult struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	Markdown  string `json:"markdown,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Fetch downloads a page and converts its HTML to markdown for pasting
// into chat context. Like Search, failures are returned as data.
func Fetch(ctx context.Context, rawURL string) *FetchResult {
	fail := func(err error) *FetchResult {
		return &FetchResult{URL: rawURL, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Warn("fetch: request failed: %v", err)
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchMaxBodyBytes+1))
	if err != nil {
		return fail(err)
	}

	truncated := len(body) > fetchMaxBodyBytes
	if truncated {
		body = body[:fetchMaxBodyBytes]
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		logger.Warn("fetch: markdown conversion failed: %v", err)
		return fail(err)
	}

	return &FetchResult{
		Success:   true,
		URL:       rawURL,
		Markdown:  markdown,
		Truncated: truncated,
	}
}
