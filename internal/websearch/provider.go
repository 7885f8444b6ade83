package websearch

import "context"

// Result is a single search hit in the shape the GUI renders.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response is the outcome of a search. Failures are carried as data;
// Results is never nil so the JSON encodes as an empty array.
type Response struct {
	Success bool     `json:"success"`
	Results []Result `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// Provider defines the interface for web search providers
type Provider interface {
	// Search performs a web search with the given query. Network and
	// parse failures are converted into an unsuccessful Response.
	Search(ctx context.Context, query string) *Response

	// Name returns the name of the search provider
	Name() string
}

func failure(err error) *Response {
	return &Response{Success: false, Results: []Result{}, Error: err.Error()}
}
