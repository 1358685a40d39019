// Package search turns a company name into an ordered, deduplicated list of
// candidate news articles by scraping a news search results page.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/metrics"
	"github.com/deusflow/newspulse/internal/rss"
)

const (
	// UserAgent is sent on every outbound request to look like a browser.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.6998.89 Safari/537.36"
	// Referer hints that traffic originates from a search engine.
	Referer = "https://www.google.com/"

	// MaxBodyBytes caps how much of a fetched page is parsed.
	MaxBodyBytes int64 = 4 << 20

	defaultBaseURL = "https://www.google.com/search"
	noHeadline     = "No headline"
)

// ErrNoResults means the search produced no usable candidates.
var ErrNoResults = errors.New("no news results found")

// Candidate is an unvalidated search hit.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Layout describes one known shape of the results page: the selector for a
// result entry and the selector for its headline inside the entry.
type Layout struct {
	Name     string
	Entry    string
	Headline string
}

// DefaultLayouts is tried in order; the first layout whose entry selector
// matches anything is used.
var DefaultLayouts = []Layout{
	{Name: "news-card", Entry: "div.SoaBEf", Headline: "div.mCBkyc"},
	{Name: "basic-html", Entry: "div.Gx5Zad", Headline: "div.BNeawe"},
}

// blockedHeadlines marks results that point at block or login pages.
var blockedHeadlines = []string{"access denied", "just a moment", "captcha", "403 forbidden", "subscribe", "login"}

var redirectTarget = regexp.MustCompile(`url=(.*?)&`)

// Feed is a secondary search source used when the results page yields nothing.
type Feed interface {
	Search(ctx context.Context, query string) ([]rss.Entry, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	layouts    []Layout
	feed       Feed
	maxBody    int64
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

func WithLayouts(l []Layout) Option { return func(c *Client) { c.layouts = l } }

// WithMaxBodyBytes caps the parsed results page; values <= 0 are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithFeed enables the feed fallback.
func WithFeed(f Feed) Option { return func(c *Client) { c.feed = f } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		layouts:    DefaultLayouts,
		maxBody:    MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildQuery appends the clause that keeps subscription and login pages out.
func BuildQuery(company string) string {
	return fmt.Sprintf("%s company news -inurl:(subscription login signup)", company)
}

// Search returns at most limit candidates for company in result order.
// It never fails hard: on any upstream problem it returns no candidates and
// an error describing what went wrong, which callers treat as a warning.
func (c *Client) Search(ctx context.Context, company string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		return nil, ErrNoResults
	}
	query := BuildQuery(company)

	candidates, err := c.searchPage(ctx, query, limit)
	metrics.Global.RecordSearch("page", len(candidates), err)
	if len(candidates) > 0 {
		return candidates, nil
	}
	if err == nil {
		err = ErrNoResults
	}

	if c.feed == nil {
		return nil, err
	}

	logger.Warn("Results page yielded nothing, trying feed search", "company", company, "error", err)
	feedCandidates, feedErr := c.searchFeed(ctx, query, limit)
	metrics.Global.RecordSearch("feed", len(feedCandidates), feedErr)
	if len(feedCandidates) > 0 {
		return feedCandidates, nil
	}
	if feedErr != nil {
		return nil, errors.Join(err, feedErr)
	}
	return nil, err
}

func (c *Client) searchPage(ctx context.Context, query string, limit int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "nws")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Referer", Referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	return ParseResults(doc, c.layouts, limit)
}

// ParseResults applies the first matching layout to doc.
func ParseResults(doc *goquery.Document, layouts []Layout, limit int) ([]Candidate, error) {
	for _, layout := range layouts {
		entries := doc.Find(layout.Entry)
		if entries.Length() == 0 {
			continue
		}
		logger.Debug("Search layout matched", "layout", layout.Name, "entries", entries.Length())

		var acc accumulator
		entries.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			headline := noHeadline
			if h := s.Find(layout.Headline).First(); h.Length() > 0 {
				headline = strings.TrimSpace(h.Text())
			}
			href, _ := s.Find("a").First().Attr("href")
			acc.add(headline, ResolveLink(href))
			return len(acc.items) < limit
		})

		if len(acc.items) == 0 {
			return nil, fmt.Errorf("layout %s: no valid article links: %w", layout.Name, ErrNoResults)
		}
		return acc.items, nil
	}
	return nil, fmt.Errorf("no result container on page (layout may have changed): %w", ErrNoResults)
}

func (c *Client) searchFeed(ctx context.Context, query string, limit int) ([]Candidate, error) {
	entries, err := c.feed.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var acc accumulator
	for _, e := range entries {
		if len(acc.items) >= limit {
			break
		}
		acc.add(e.Title, e.Link)
	}
	if len(acc.items) == 0 {
		return nil, fmt.Errorf("feed: %w", ErrNoResults)
	}
	return acc.items, nil
}

// ResolveLink unwraps search-engine redirect links of the form
// /url?...&url=<target>&... . Unresolvable wrappers yield "".
func ResolveLink(href string) string {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	m := redirectTarget.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsBlockedHeadline reports whether a headline looks like a block or login page.
func IsBlockedHeadline(headline string) bool {
	lower := strings.ToLower(headline)
	for _, phrase := range blockedHeadlines {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// accumulator applies the headline denylist and first-wins URL dedup.
type accumulator struct {
	items []Candidate
	seen  map[string]struct{}
}

func (a *accumulator) add(title, link string) {
	if IsBlockedHeadline(title) || link == "" {
		return
	}
	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	if _, dup := a.seen[link]; dup {
		return
	}
	a.seen[link] = struct{}{}
	a.items = append(a.items, Candidate{Title: title, URL: link})
}
