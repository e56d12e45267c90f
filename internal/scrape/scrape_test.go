package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homepageFixture = `<html><head><title>Toolly</title><style>body{}</style></head>
<body>
  <header>Sign in</header>
  <nav><a href="/">Home</a></nav>
  <h1>Toolly</h1><p>Writes   blog posts
  for you.</p>
  <script>track()</script>
  <noscript>Enable JS</noscript>
  <footer>© 2024</footer>
</body></html>`

func TestVisibleText(t *testing.T) {
	text, err := VisibleText([]byte(homepageFixture), 0)
	require.NoError(t, err)
	assert.Equal(t, "Toolly Writes blog posts for you.", text)

	short, err := VisibleText([]byte(homepageFixture), 6)
	require.NoError(t, err)
	assert.Equal(t, "Toolly", short)
}

func TestHomepageReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homepageFixture))
	}))
	defer srv.Close()

	h := NewHomepageReader(5 * time.Second)
	text, err := h.Read(context.Background(), srv.URL, 2500)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Toolly Writes"))

	_, err = h.Read(context.Background(), srv.URL+"/missing", 2500)
	assert.Error(t, err)
}

const resultsFixture = `<html><body>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Freview&amp;rut=abc">Toolly <b>review</b></a></h2>
  <a class="result__snippet">An honest   look at Toolly.</a>
</div>
<div class="result">
  <a class="result__a" href="https://direct.example/tutorial">Toolly tutorial</a>
  <div class="result__snippet">Step by step.</div>
</div>
<div class="result"><a class="result__a" href="">Broken</a></div>
<div class="result">
  <a class="result__a" href="https://third.example">Third</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	results, err := ParseResults([]byte(resultsFixture), 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Toolly review", results[0].Title)
	assert.Equal(t, "https://example.com/review", results[0].Href)
	assert.Equal(t, "An honest look at Toolly.", results[0].Body)
	assert.Equal(t, "https://direct.example/tutorial", results[1].Href)
	assert.Equal(t, "", results[2].Body)

	limited, err := ParseResults([]byte(resultsFixture), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSearcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Toolly AI tool tutorial OR review OR news", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(resultsFixture))
	}))
	defer srv.Close()

	results, err := NewSearcher(srv.URL, 5*time.Second).Search(context.Background(), "Toolly AI tool tutorial OR review OR news", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
