package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigcpilot/harvester/internal/models"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type stubHomepage struct {
	text string
	err  error
}

func (s stubHomepage) Read(context.Context, string, int) (string, error) { return s.text, s.err }

type stubSearch struct {
	results []models.SearchResult
	err     error
	queries []string
}

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]models.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func assertComplete(t *testing.T, e models.Enrichment) {
	t.Helper()
	assert.True(t, e.Complete(), "incomplete enrichment: %+v", e)
}

func TestShallowParsesFencedReply(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
		"title_zh": "绘图大师", "title_en": "DrawMaster",
		"summary_zh": "一键生成插画", "summary_en": "Generate illustrations in one click.",
		"aiScore": 8.5,
		"content_zh": "## 功能特性\n- 生成", "content_en": "## Key Features\n- Generate"
	}` + "\n```"}
	e := NewEnricher(gen, nil, nil)

	out := e.Shallow(context.Background(), "DrawMaster", "AI drawing")

	assertComplete(t, out)
	assert.Equal(t, "绘图大师", out.TitleZh)
	assert.Equal(t, "DrawMaster", out.TitleEn)
	require.NotNil(t, out.AIScore)
	assert.Equal(t, 8.5, *out.AIScore)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "DrawMaster")
}

func TestShallowFallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"transport error", &stubGenerator{err: errors.New("timeout")}},
		{"not json", &stubGenerator{reply: "not json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewEnricher(tt.gen, nil, nil).Shallow(context.Background(), "Toolly", "Writes blog posts for you")
			assertComplete(t, out)
			assert.Equal(t, Fallback("Toolly", "Writes blog posts for you"), out)
			assert.Equal(t, "Toolly", out.TitleZh)
			assert.Contains(t, out.ContentEn, "AI generation failed")
		})
	}
}

func TestShallowCompletesPartialReply(t *testing.T) {
	gen := &stubGenerator{reply: `{"title_zh": "  写作\t助手 ", "content_zh": "<script>alert(1)</script>正文"}`}
	out := NewEnricher(gen, nil, nil).Shallow(context.Background(), "Writer", "desc")

	assertComplete(t, out)
	assert.Equal(t, "写作 助手", out.TitleZh)
	assert.Equal(t, "正文", out.ContentZh)
	assert.Equal(t, "Writer", out.TitleEn)
	assert.Equal(t, fallbackSummaryEn, out.SummaryEn)
}

func TestFallbackPlaceholders(t *testing.T) {
	out := Fallback("", "")
	assertComplete(t, out)
	assert.Equal(t, unnamedTool, out.TitleZh)

	long := strings.Repeat("字", 80)
	assert.Equal(t, strings.Repeat("字", 50), Fallback("X", long).SummaryZh)
}

func TestDeep(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary_zh":"摘要","summary_en":"Summary","coreValue":"价值","useCases":["开发者","博主"],"prosCons":"好","content_zh":"中文","content_en":"English"}`}
	search := &stubSearch{results: []models.SearchResult{{Title: "Review", Href: "https://r.example", Body: "Great"}}}
	e := NewEnricher(gen, stubHomepage{text: "Homepage body"}, search)

	out, err := e.Deep(context.Background(), "Toolly", "https://toolly.ai")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "摘要", out.SummaryZh)
	assert.Equal(t, "- 开发者\n- 博主", out.UseCases)

	require.Len(t, search.queries, 1)
	assert.Equal(t, "Toolly AI tool tutorial OR review OR news", search.queries[0])
	assert.Contains(t, gen.prompts[0], "Homepage body")
	assert.Contains(t, gen.prompts[0], "- [Review](https://r.example): Great")
}

func TestDeepArticleWithCodeBlock(t *testing.T) {
	gen := &stubGenerator{reply: "{\"summary_en\":\"CLI for agents\",\"content_zh\":\"安装：\\n```bash\\nnpm i agent\\n```\\n好用\"}"}
	e := NewEnricher(gen, stubHomepage{text: "Homepage body"}, &stubSearch{})

	out, err := e.Deep(context.Background(), "Agent", "https://agent.dev")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "CLI for agents", out.SummaryEn)
	assert.Contains(t, out.ContentZh, "```bash\nnpm i agent\n```")
}

func TestDeepHomepageUnavailable(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary_en":"Summary"}`}
	search := &stubSearch{err: errors.New("blocked")}
	e := NewEnricher(gen, stubHomepage{err: errors.New("dial tcp")}, search)

	out, err := e.Deep(context.Background(), "Toolly", "https://toolly.ai")
	require.NoError(t, err)
	assert.Equal(t, "Summary", out.SummaryEn)
	assert.Contains(t, gen.prompts[0], HomepageUnavailable)
}

func TestDeepFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
		is   error
	}{
		{"parse", &stubGenerator{reply: "sorry, I cannot"}, ErrParse},
		{"empty", &stubGenerator{reply: `{"summary_zh": "  "}`}, ErrEmptyResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewEnricher(tt.gen, nil, nil).Deep(context.Background(), "T", "https://t.ai")
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.is)
		})
	}

	out, err := NewEnricher(&stubGenerator{err: errors.New("boom")}, nil, nil).Deep(context.Background(), "T", "https://t.ai")
	assert.Nil(t, out)
	assert.Error(t, err)
}

func TestNews(t *testing.T) {
	gen := &stubGenerator{reply: `{"title_zh":"新模型发布","content_zh":"正文"}`}
	out := NewEnricher(gen, nil, nil).News(context.Background(), "New model", "https://n.example/1", "desc", "")
	assert.Equal(t, models.NewsCopy{TitleZh: "新模型发布", ContentZh: "正文"}, out)

	failed := NewEnricher(&stubGenerator{err: errors.New("down")}, nil, nil).
		News(context.Background(), "New model", "https://n.example/1", "desc", "")
	assert.Equal(t, "New model", failed.TitleZh)
	assert.Equal(t, "Source: https://n.example/1\ndesc", failed.ContentZh)
}

func TestDeepSeekClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat["type"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"a\":1}"}}]}`))
	}))
	defer srv.Close()

	c := NewDeepSeekClient("key", "", srv.URL, 5*time.Second)
	out, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestDeepSeekClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := NewDeepSeekClient("key", "", srv.URL, 5*time.Second).Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestGeminiClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"b\":2}"}]}}]}`))
	}))
	defer srv.Close()

	out, err := NewGeminiClient("key", "gemini-test", srv.URL, 5*time.Second).Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, out)
}
