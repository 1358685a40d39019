// Package rss runs keyword searches against a news RSS search endpoint.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Entry is one item of a search feed.
type Entry struct {
	Title string
	Link  string
}

// Client queries an RSS search endpoint such as
// https://news.google.com/rss/search.
type Client struct {
	parser  *gofeed.Parser
	baseURL string
}

// NewClient creates a feed search client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	parser := gofeed.NewParser()
	if httpClient != nil {
		parser.Client = httpClient
	}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Client{parser: parser, baseURL: baseURL}
}

// Search downloads and parses the feed for query, in feed order.
func (c *Client) Search(ctx context.Context, query string) ([]Entry, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	feed, err := c.parser.ParseURLWithContext(c.baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse search feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		entries = append(entries, Entry{
			Title: strings.TrimSpace(item.Title),
			Link:  link,
		})
	}
	return entries, nil
}
