package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDuckGoSearchParsesAbstractAndTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go language", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("no_html"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Heading": "Go (programming language)",
			"Abstract": "Go is a statically typed language.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Go",
			"RelatedTopics": [
				{"Text": "Gopher - The Go mascot", "FirstURL": "https://go.dev/gopher"},
				{"Name": "Grouped topic without fields"},
				{"Text": "Goroutine - Lightweight thread", "FirstURL": "https://go.dev/goroutine"}
			]
		}`))
	}))
	defer srv.Close()

	provider := NewDuckDuckGoProvider(srv.URL + "/")
	resp := provider.Search(context.Background(), "go language")

	require.True(t, resp.Success, "search failed: %s", resp.Error)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "Go (programming language)", resp.Results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go", resp.Results[0].URL)
	assert.Equal(t, "Go is a statically typed language.", resp.Results[0].Snippet)

	assert.Equal(t, "Gopher", resp.Results[1].Title)
	assert.Equal(t, "Gopher - The Go mascot", resp.Results[1].Snippet)
	assert.Equal(t, "Goroutine", resp.Results[2].Title)
}

func TestDuckDuckGoSearchAbstractFallbackTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Abstract": "Something.", "AbstractURL": "https://example.com"}`))
	}))
	defer srv.Close()

	provider := NewDuckDuckGoProvider(srv.URL + "/")
	resp := provider.Search(context.Background(), "myquery")

	require.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "myquery", resp.Results[0].Title)
}

func TestDuckDuckGoSearchTopicCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"RelatedTopics": [
			{"Text": "a - 1", "FirstURL": "u1"},
			{"Text": "b - 2", "FirstURL": "u2"},
			{"Text": "c - 3", "FirstURL": "u3"},
			{"Text": "d - 4", "FirstURL": "u4"},
			{"Text": "e - 5", "FirstURL": "u5"},
			{"Text": "f - 6", "FirstURL": "u6"}
		]}`))
	}))
	defer srv.Close()

	provider := NewDuckDuckGoProvider(srv.URL + "/")
	resp := provider.Search(context.Background(), "x")

	require.True(t, resp.Success)
	assert.Len(t, resp.Results, 5)
}

func TestDuckDuckGoSearchErrorsBecomeData(t *testing.T) {
	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		provider := NewDuckDuckGoProvider(srv.URL + "/")
		resp := provider.Search(context.Background(), "x")

		assert.False(t, resp.Success)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		provider := NewDuckDuckGoProvider(srv.URL + "/")
		resp := provider.Search(context.Background(), "x")

		assert.False(t, resp.Success)
		assert.Empty(t, resp.Results)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestFetchConvertsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>"))
	}))
	defer srv.Close()

	result := Fetch(context.Background(), srv.URL)
	require.True(t, result.Success, "fetch failed: %s", result.Error)
	assert.Contains(t, result.Markdown, "# Title")
	assert.Contains(t, result.Markdown, "**bold**")
	assert.False(t, result.Truncated)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	result := Fetch(context.Background(), srv.URL)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}
