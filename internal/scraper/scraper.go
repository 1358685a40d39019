package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newspulse/internal/metrics"
	"github.com/deusflow/newspulse/internal/search"
)

const (
	// DefaultMinTextRunes is the canonical validity threshold for body text.
	DefaultMinTextRunes = 150

	fallbackParagraphRunes = 50
	unknownTitle           = "Unknown Title"
	failedTitle            = "Extraction Failed"
)

// blockPhrases mark block, bot-check and paywall pages. They are checked
// against the page title and used to drop boilerplate paragraphs.
var blockPhrases = []string{
	"access denied", "just a moment", "cloudflare", "captcha",
	"403 forbidden", "subscribe now", "log in", "sign up",
}

// Result is the outcome of extracting one article page.
type Result struct {
	Valid    bool
	Title    string
	FullText string
	Summary  string
}

type Extractor struct {
	client       *http.Client
	strategies   []Strategy
	minTextRunes int
	maxBody      int64
}

type Option func(*Extractor)

func WithHTTPClient(c *http.Client) Option { return func(e *Extractor) { e.client = c } }

func WithStrategies(s []Strategy) Option { return func(e *Extractor) { e.strategies = s } }

// WithMinTextRunes sets the body length gate; values <= 0 are ignored.
func WithMinTextRunes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minTextRunes = n
		}
	}
}

// WithMaxBodyBytes caps how much of a page is parsed; values <= 0 are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBody = n
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		client:       &http.Client{Timeout: 10 * time.Second},
		strategies:   DefaultStrategies,
		minTextRunes: DefaultMinTextRunes,
		maxBody:      search.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches url and turns it into body text and a summary focused on
// company. It never returns an error: every failure is an invalid Result.
func (e *Extractor) Extract(ctx context.Context, url, company string) Result {
	res, err := e.extract(ctx, url, company)
	if err != nil {
		res = Result{Valid: false, Title: failedTitle, Summary: fmt.Sprintf("Error: %v", err)}
	}
	metrics.Global.RecordExtraction(res.Valid)
	return res
}

func (e *Extractor) extract(ctx context.Context, url, company string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", search.UserAgent)
	req.Header.Set("Referer", search.Referer)

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return Result{}, fmt.Errorf("error parsing HTML: %w", err)
	}

	return e.ExtractDocument(doc, company), nil
}

// ExtractDocument applies the title gate, the container chain, the validity
// gate and summarisation to an already parsed page.
func (e *Extractor) ExtractDocument(doc *goquery.Document, company string) Result {
	title := extractTitle(doc)
	if containsAny(title, blockPhrases) {
		return Result{Valid: false, Title: title}
	}

	paragraphs := e.selectParagraphs(doc, company)
	text := joinParagraphs(paragraphs)

	if !e.isValid(text, title, company) {
		return Result{Valid: false, Title: title}
	}

	return Result{
		Valid:    true,
		Title:    title,
		FullText: text,
		Summary:  Summarize(text, company),
	}
}

func (e *Extractor) selectParagraphs(doc *goquery.Document, company string) *goquery.Selection {
	for _, strategy := range e.strategies {
		container := doc.Find(strategy.Selector).First()
		if container.Length() == 0 || strings.TrimSpace(container.Text()) == "" {
			continue
		}
		return container.Find("p")
	}

	// No known container: keep long paragraphs that talk about the company.
	lowerCompany := strings.ToLower(company)
	return doc.Find("p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		return utf8.RuneCountInString(t) > fallbackParagraphRunes && strings.Contains(strings.ToLower(t), lowerCompany)
	})
}

func (e *Extractor) isValid(text, title, company string) bool {
	if utf8.RuneCountInString(text) < e.minTextRunes {
		return false
	}
	lowerCompany := strings.ToLower(company)
	return strings.Contains(strings.ToLower(text), lowerCompany) ||
		strings.Contains(strings.ToLower(title), lowerCompany)
}

// joinParagraphs drops empty and boilerplate paragraphs and joins the rest
// with single spaces.
func joinParagraphs(paragraphs *goquery.Selection) string {
	var parts []string
	paragraphs.Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" || containsAny(t, blockPhrases) {
			return
		}
		parts = append(parts, t)
	})
	return strings.Join(parts, " ")
}

// extractTitle reads the document <title>.
func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return unknownTitle
	}
	return title
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
