package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newspulse/internal/search"
)

const articlePage = `<html><head><title> Acme ships Falcon 2 </title></head><body>
<nav><p>Home | World | Business</p></nav>
<article>
<p>Acme announced the Falcon 2 launcher on Monday, calling it the largest program in the company's history.</p>
<p>Subscribe now to keep reading premium coverage.</p>
<p>   </p>
<p>Analysts said the launch could reshape the small satellite market for years to come.</p>
</article>
<footer><p>Copyright</p></footer>
</body></html>`

func serve(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &headers
}

func TestExtract_ArticleContainer(t *testing.T) {
	srv, headers := serve(t, http.StatusOK, articlePage)
	e := NewExtractor(WithHTTPClient(srv.Client()))

	res := e.Extract(context.Background(), srv.URL, "acme")
	require.True(t, res.Valid)
	assert.Equal(t, "Acme ships Falcon 2", res.Title)
	assert.Equal(t,
		"Acme announced the Falcon 2 launcher on Monday, calling it the largest program in the company's history. "+
			"Analysts said the launch could reshape the small satellite market for years to come.",
		res.FullText)
	assert.NotContains(t, res.FullText, "Subscribe")
	assert.NotContains(t, res.FullText, "Home |")
	assert.Equal(t, res.FullText, res.Summary)

	assert.Equal(t, search.UserAgent, headers.Get("User-Agent"))
	assert.Equal(t, search.Referer, headers.Get("Referer"))
}

func TestExtract_BlockedTitleSkipsBody(t *testing.T) {
	page := strings.Replace(articlePage, "Acme ships Falcon 2", "Subscribe Now | Acme Daily", 1)
	srv, _ := serve(t, http.StatusOK, page)

	res := NewExtractor(WithHTTPClient(srv.Client())).Extract(context.Background(), srv.URL, "Acme")
	assert.False(t, res.Valid)
	assert.Equal(t, "Subscribe Now | Acme Daily", res.Title)
	assert.Empty(t, res.FullText)
	assert.Empty(t, res.Summary)
}

func TestExtract_HTTPStatus(t *testing.T) {
	srv, _ := serve(t, http.StatusForbidden, articlePage)

	res := NewExtractor(WithHTTPClient(srv.Client())).Extract(context.Background(), srv.URL, "Acme")
	assert.False(t, res.Valid)
	assert.Equal(t, "Extraction Failed", res.Title)
	assert.Equal(t, "Error: HTTP status 403", res.Summary)
}

func TestExtract_NetworkError(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, articlePage)
	url := srv.URL
	srv.Close()

	res := NewExtractor().Extract(context.Background(), url, "Acme")
	assert.False(t, res.Valid)
	assert.Equal(t, "Extraction Failed", res.Title)
	assert.True(t, strings.HasPrefix(res.Summary, "Error: "))
}

func TestExtract_BadURL(t *testing.T) {
	res := NewExtractor().Extract(context.Background(), "://nope", "Acme")
	assert.False(t, res.Valid)
	assert.Equal(t, "Extraction Failed", res.Title)
}

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtract_BodyLimit(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, articlePage)
	limit := int64(strings.Index(articlePage, "<p>Analysts"))

	res := NewExtractor(WithHTTPClient(srv.Client()), WithMaxBodyBytes(limit)).Extract(context.Background(), srv.URL, "Acme")
	assert.False(t, res.Valid)
	assert.Equal(t, "Acme ships Falcon 2", res.Title)
	assert.Empty(t, res.FullText)

	res = NewExtractor(WithHTTPClient(srv.Client()), WithMaxBodyBytes(0)).Extract(context.Background(), srv.URL, "Acme")
	assert.True(t, res.Valid)
}

func TestExtractDocument_StrategyChain(t *testing.T) {
	long := "Acme said demand for its orbital service kept growing through the quarter and beyond. "

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "content class",
			html: `<div class="story-content"><p>` + long + `</p><p>` + long + `</p></div><p>Sidebar about Acme that is long enough to count as a paragraph.</p>`,
			want: strings.TrimSpace(long) + " " + strings.TrimSpace(long),
		},
		{
			name: "content id",
			html: `<div id="entry-content"><p>` + long + `</p><p>` + long + `</p></div>`,
			want: strings.TrimSpace(long) + " " + strings.TrimSpace(long),
		},
		{
			name: "main",
			html: `<main><p>` + long + `</p><p>` + long + `</p></main>`,
			want: strings.TrimSpace(long) + " " + strings.TrimSpace(long),
		},
		{
			name: "empty article falls through",
			html: `<article>  </article><main><p>` + long + `</p><p>` + long + `</p></main>`,
			want: strings.TrimSpace(long) + " " + strings.TrimSpace(long),
		},
		{
			name: "loose paragraphs",
			html: `<p>` + long + `</p><p>Short Acme note.</p><p>A long paragraph about the weather that never names the firm at all.</p><p>` + long + `</p>`,
			want: strings.TrimSpace(long) + " " + strings.TrimSpace(long),
		},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.ExtractDocument(doc(t, "<html><head><title>News</title></head><body>"+tt.html+"</body></html>"), "Acme")
			require.True(t, res.Valid)
			assert.Equal(t, tt.want, res.FullText)
		})
	}
}

func TestExtractDocument_ValidityGate(t *testing.T) {
	filler := strings.Repeat("The satellite market keeps moving quickly this year. ", 4)

	t.Run("too short", func(t *testing.T) {
		res := NewExtractor().ExtractDocument(doc(t, `<html><head><title>Acme</title></head><body><article><p>Acme grew.</p></article></body></html>`), "Acme")
		assert.False(t, res.Valid)
	})

	t.Run("company only in title", func(t *testing.T) {
		res := NewExtractor().ExtractDocument(doc(t, `<html><head><title>Acme update</title></head><body><article><p>`+filler+`</p></article></body></html>`), "Acme")
		assert.True(t, res.Valid)
	})

	t.Run("company missing", func(t *testing.T) {
		res := NewExtractor().ExtractDocument(doc(t, `<html><head><title>Market update</title></head><body><article><p>`+filler+`</p></article></body></html>`), "Acme")
		assert.False(t, res.Valid)
	})

	t.Run("relaxed threshold", func(t *testing.T) {
		body := `<html><head><title>x</title></head><body><article><p>Acme posted strong numbers, beating forecasts and lifting guidance for the rest of the year.</p></article></body></html>`
		assert.False(t, NewExtractor().ExtractDocument(doc(t, body), "Acme").Valid)
		assert.True(t, NewExtractor(WithMinTextRunes(60)).ExtractDocument(doc(t, body), "Acme").Valid)
	})

	t.Run("missing title", func(t *testing.T) {
		res := NewExtractor().ExtractDocument(doc(t, `<html><body><article><p>Acme `+filler+`</p></article></body></html>`), "Acme")
		assert.True(t, res.Valid)
		assert.Equal(t, "Unknown Title", res.Title)
	})
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"One.", "Two!", "Three?", "Version 3.5 stays whole.", "end"},
		SplitSentences("One. Two!  Three?\nVersion 3.5 stays whole. end"))
	assert.Equal(t, []string{"No terminator"}, SplitSentences("No terminator"))
	assert.Equal(t, []string{"Trailing."}, SplitSentences("Trailing."))
	assert.Empty(t, SplitSentences(""))
}

func TestSummarize(t *testing.T) {
	t.Run("prefers company sentences", func(t *testing.T) {
		var parts []string
		for i := 0; i < 6; i++ {
			parts = append(parts, "Acme did thing number "+string(rune('A'+i))+".", "Markets moved.")
		}
		text := strings.Join(parts, " ")
		got := Summarize(text, "acme")
		assert.Equal(t, "Acme did thing number A. Acme did thing number B. Acme did thing number C. Acme did thing number D. Acme did thing number E.", got)
	})

	t.Run("falls back to first seven", func(t *testing.T) {
		var parts []string
		for i := 0; i < 9; i++ {
			parts = append(parts, "Sentence "+string(rune('a'+i))+" about the wider industry and its prospects.")
		}
		text := strings.Join(parts, " ")
		got := Summarize(text, "Acme")
		assert.Equal(t, strings.Join(parts[:7], " "), got)
	})

	t.Run("short summary replaced by text prefix", func(t *testing.T) {
		short := strings.Repeat("Hi. ", 7) + strings.Repeat("y", 450)
		got := Summarize(short, "Acme")
		assert.Equal(t, 403, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.Equal(t, short[:400], strings.TrimSuffix(got, "..."))
	})

	t.Run("hard cap", func(t *testing.T) {
		text := "Acme " + strings.Repeat("é", 700) + "."
		got := Summarize(text, "Acme")
		assert.Equal(t, 512, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("short text kept", func(t *testing.T) {
		assert.Equal(t, "Acme grew.", Summarize("Acme grew.", "Acme"))
	})
}
