package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		RequestDelay:  -1,
		RetryInterval: time.Millisecond,
	}
}

const braveBody = `{
  "web": {
    "results": [
      {"title": "Go <strong>Concurrency</strong>", "url": "https://go.dev/a", "description": "Goroutines &amp; <strong>channels</strong>", "age": "2 days ago", "meta_url": {"favicon": "https://go.dev/favicon.ico"}},
      {"title": "No URL", "url": "", "description": "skipped"},
      {"title": "Second", "url": "https://go.dev/b", "description": "plain"}
    ]
  }
}`

func TestBrave_Search(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, braveBody)
	}))
	defer srv.Close()

	p, err := NewBrave("brave-key", testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderBrave, p.Name())

	results, err := p.Search(context.Background(), "go concurrency", 50)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "brave-key", gotReq.Header.Get("X-Subscription-Token"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))
	q := gotReq.URL.Query()
	assert.Equal(t, "go concurrency", q.Get("q"))
	assert.Equal(t, "20", q.Get("count"), "brave caps count at 20")
	assert.Equal(t, "moderate", q.Get("safesearch"))

	first := results[0]
	assert.Equal(t, "Go Concurrency", first.Title)
	assert.Equal(t, "Goroutines & channels", first.Snippet)
	assert.Equal(t, domain.ProviderBrave, first.Provider)
	assert.Equal(t, "2 days ago", first.Extra["age"])
	assert.Equal(t, "https://go.dev/favicon.ico", first.Extra["favicon"])
	assert.Nil(t, results[1].Extra)
}

func TestBrave_RespectsMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, braveBody)
	}))
	defer srv.Close()

	p, _ := NewBrave("k", testConfig(srv.URL))
	results, err := p.Search(context.Background(), "go", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBrave_RequiresKey(t *testing.T) {
	_, err := NewBrave("", Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestBrave_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, braveBody)
	}))
	defer srv.Close()

	p, _ := NewBrave("k", testConfig(srv.URL))
	results, err := p.Search(context.Background(), "go", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBrave_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, _ := NewBrave("k", testConfig(srv.URL))
	_, err := p.Search(context.Background(), "go", 10)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(1+DefaultMaxRetries), calls.Load())
}

func TestBrave_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := NewBrave("k", testConfig(srv.URL))
	_, err := p.Search(context.Background(), "go", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestBrave_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer srv.Close()

	p, _ := NewBrave("k", testConfig(srv.URL))
	_, err := p.Search(context.Background(), "go", 10)
	assert.ErrorContains(t, err, "decode response")
}

func TestGoogle_Search(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"items": [
			{"title": "Effective Go", "link": "https://go.dev/doc/effective_go", "snippet": "Tips for writing clear Go", "mime": "text/html"},
			{"title": "Spec PDF", "link": "https://go.dev/ref.pdf", "snippet": "The Go\nreference", "fileFormat": "PDF/Adobe Acrobat"}
		]}`)
	}))
	defer srv.Close()

	p, err := NewGoogle("g-key", "cx-1", testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, p.Name())

	results, err := p.Search(context.Background(), "effective go", 25)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "g-key", gotQuery.Get("key"))
	assert.Equal(t, "cx-1", gotQuery.Get("cx"))
	assert.Equal(t, "10", gotQuery.Get("num"), "google caps num at 10")

	assert.Equal(t, "https://go.dev/doc/effective_go", results[0].URL)
	assert.Equal(t, "text/html", results[0].Extra["mime_type"])
	assert.Equal(t, "PDF/Adobe Acrobat", results[1].Extra["file_format"])
	assert.Equal(t, "The Go reference", results[1].Snippet)
}

func TestGoogle_RequiresKeyAndEngine(t *testing.T) {
	_, err := NewGoogle("key", "", Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	_, err = NewGoogle("", "cx", Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

const duckDuckGoPage = `<html><body>
<div class="result results_links web-result">
  <div class="links_main links_deep result__body">
    <h2 class="result__title"><a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fblog%2Fpipelines&amp;rut=abc">Go <b>Pipelines</b></a></h2>
    <a class="result__snippet" href="#">Concurrency patterns with <b>channels</b>.</a>
  </div>
</div>
<div class="result">
  <div class="result__body">
    <h2><a class="result__a" href="https://example.com/direct">Direct link</a></h2>
  </div>
</div>
<div class="result">
  <div class="result__body">
    <h2><a class="result__a" href="javascript:void(0)">Ad</a></h2>
  </div>
</div>
<div class="result">
  <div class="result__body">
    <h2><a class="result__a" href="https://example.com/third">Third</a></h2>
    <a class="result__snippet">Third snippet</a>
  </div>
</div>
</body></html>`

func TestDuckDuckGo_Search(t *testing.T) {
	var gotForm url.Values
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = io.WriteString(w, duckDuckGoPage)
	}))
	defer srv.Close()

	p := NewDuckDuckGo(testConfig(srv.URL))
	assert.Equal(t, domain.ProviderDuckDuckGo, p.Name())

	results, err := p.Search(context.Background(), "go pipelines", 10)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "go pipelines", gotForm.Get("q"))
	assert.Equal(t, "us-en", gotForm.Get("kl"))

	require.Len(t, results, 3)
	assert.Equal(t, "https://go.dev/blog/pipelines", results[0].URL, "redirect links are unwrapped")
	assert.Equal(t, "Go Pipelines", results[0].Title)
	assert.Equal(t, "Concurrency patterns with channels.", results[0].Snippet)
	assert.Equal(t, noDescription, results[1].Snippet)
	assert.Equal(t, "https://example.com/third", results[2].URL)
}

func TestDuckDuckGo_MaxResults(t *testing.T) {
	results, err := parseDuckDuckGo([]byte(duckDuckGoPage), 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDuckDuckGo_EmptyPage(t *testing.T) {
	results, err := parseDuckDuckGo([]byte("<html><body>No results.</body></html>"), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := NewDuckDuckGo(testConfig(srv.URL))
	_, err := p.Search(ctx, "slow", 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_RequestDelay(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestDelay = 100 * time.Millisecond
	p := NewDuckDuckGo(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := p.Search(context.Background(), "go", 10)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"<strong>Go</strong> &amp; Rust":  "Go & Rust",
		"  spaced \n\t out  ":              "spaced out",
		`<script>alert(1)</script>Safe`:    "Safe",
		"Tom &#39;s &quot;guide&quot;":     `Tom 's "guide"`,
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanText(in), in)
	}
}
