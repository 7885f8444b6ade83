package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/codefionn/werkbank/internal/logger"
)

const (
	defaultEndpoint  = "https://api.duckduckgo.com/"
	maxRelatedTopics = 5
)

// DuckDuckGoProvider queries the DuckDuckGo instant-answer API. No API
// key, no retries, no caching; the platform default timeout applies
// unless the caller's context says otherwise.
type DuckDuckGoProvider struct {
	endpoint string
	client   *http.Client
}

// NewDuckDuckGoProvider creates the provider. An empty endpoint selects
// the public API; tests point it at a local server.
func NewDuckDuckGoProvider(endpoint string) *DuckDuckGoProvider {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &DuckDuckGoProvider{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// instantAnswer is the subset of the DuckDuckGo response we consume.
type instantAnswer struct {
	Heading       string         `json:"Heading"`
	Abstract      string         `json:"Abstract"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Search issues a single GET and parses the abstract plus up to five
// related topics. Grouped topics without Text/FirstURL still consume a
// slot of the five, matching the passthrough's historical behavior.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string) *Response {
	requestURL := fmt.Sprintf("%s?q=%s&format=json&no_html=1", p.endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return failure(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Warn("websearch: request failed: %v", err)
		return failure(err)
	}
	defer resp.Body.Close()

	var data instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Warn("websearch: decode failed: %v", err)
		return failure(err)
	}

	results := []Result{}

	if data.Abstract != "" {
		title := data.Heading
		if title == "" {
			title = query
		}
		results = append(results, Result{
			Title:   title,
			URL:     data.AbstractURL,
			Snippet: data.Abstract,
		})
	}

	for i, topic := range data.RelatedTopics {
		if i >= maxRelatedTopics {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		title, _, _ := strings.Cut(topic.Text, " - ")
		results = append(results, Result{
			Title:   title,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}

	return &Response{Success: true, Results: results}
}

// Name returns the provider name
func (p *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}
