package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><title>Channels</title></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Channels</h1>
<p>Channels connect concurrent goroutines. You can send values into channels from one goroutine and receive those values into another goroutine.</p>
<pre><code class="language-go">ch := make(chan int)</code></pre>
<p>See the <a href="/sync">sync package</a>.</p>
<img src="/img/gopher.png" alt="gopher">
</article>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/article", http.StatusFound)
	})
	mux.HandleFunc("/readme.md", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte("# Readme\n\nHello."))
	})
	mux.HandleFunc("/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractor_Extract(t *testing.T) {
	srv := newTestServer(t)
	e := New(Config{})

	doc, err := e.Extract(context.Background(), srv.URL+"/article")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/article", doc.URL)
	assert.Equal(t, "Channels", doc.Title)
	assert.Contains(t, doc.Markdown, "Channels connect concurrent goroutines")
	assert.NotContains(t, doc.Markdown, "Home")
	assert.True(t, doc.HasContent())

	assert.Equal(t, http.StatusOK, doc.Fetch.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", doc.Fetch.ContentType)

	require.Len(t, doc.CodeBlocks, 1)
	assert.Equal(t, "go", doc.CodeBlocks[0].Language)
	require.Len(t, doc.Links, 1)
	assert.Equal(t, srv.URL+"/sync", doc.Links[0].URL)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, srv.URL+"/img/gopher.png", doc.Images[0].URL)

	assert.Equal(t, 1, doc.Metrics.CodeBlockCount)
	assert.Equal(t, 1, doc.Metrics.LinkCount)
	assert.Equal(t, 1, doc.Metrics.ImageCount)
	assert.Equal(t, len(strings.Fields(doc.PlainText)), doc.Metrics.WordCount)
	assert.Equal(t, utf8.RuneCountInString(doc.PlainText), doc.Metrics.CharCount)
	assert.NotEmpty(t, doc.Excerpt)
}

func TestExtractor_FollowsRedirects(t *testing.T) {
	srv := newTestServer(t)
	doc, err := New(Config{}).Extract(context.Background(), srv.URL+"/moved")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/moved", doc.URL)
	assert.Equal(t, srv.URL+"/article", doc.Fetch.FinalURL)
	assert.Equal(t, "Channels", doc.Title)
}

func TestExtractor_Markdown(t *testing.T) {
	srv := newTestServer(t)
	doc, err := New(Config{}).Extract(context.Background(), srv.URL+"/readme.md")
	require.NoError(t, err)

	assert.Equal(t, "Readme", doc.Title)
	assert.Equal(t, "# Readme\n\nHello.", doc.Markdown)
}

func TestExtractor_Failures(t *testing.T) {
	srv := newTestServer(t)
	e := New(Config{Timeout: 100 * time.Millisecond})

	tests := []struct {
		name string
		path string
	}{
		{name: "not found", path: "/missing"},
		{name: "unsupported type", path: "/report.pdf"},
		{name: "timeout", path: "/slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), srv.URL+tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrExtractionFailed), "got %v", err)
		})
	}
}

func TestExtractor_BodyLimit(t *testing.T) {
	srv := newTestServer(t)
	_, err := New(Config{MaxBytes: 64}).Extract(context.Background(), srv.URL+"/article")
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractor_EmptyURL(t *testing.T) {
	_, err := New(Config{}).Extract(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractor_Chunk(t *testing.T) {
	e := New(Config{})
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Sentence number ")
		sb.WriteString(strings.Repeat("x", i%7+1))
		sb.WriteString(" ends here. ")
	}

	chunks := e.Chunk(sb.String(), 200, 20)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 200, "chunk %d too long", i)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 60)
	sentence := strings.Repeat("a", 170) + ". trailing words that run past the limit and keep going for a while longer"

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "short text untouched", text: "  hello \n world ", want: "hello world"},
		{name: "cuts at word", text: long, want: strings.TrimSpace(strings.Repeat("word ", 40)) + "..."},
		{name: "cuts at late sentence", text: sentence, want: strings.Repeat("a", 170) + "."},
		{name: "no space", text: strings.Repeat("z", 250), want: strings.Repeat("z", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.text, 200))
		})
	}
}
