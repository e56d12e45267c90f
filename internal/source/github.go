package source

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

const (
	githubQuery       = "topic:llm OR topic:ai OR topic:generative-ai stars:>50"
	githubPerPage     = 5
	githubDefaultDesc = "An open-source AI project."
)

// GitHubSource lists recently updated AI repositories.
type GitHubSource struct {
	client *resty.Client
}

type githubSearch struct {
	Items []struct {
		Name        string `json:"name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Owner       struct {
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
		} `json:"owner"`
	} `json:"items"`
}

func NewGitHubSource(baseURL, token string) *GitHubSource {
	if baseURL == "" {
		baseURL = DefaultGitHubAPI
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", "AIGCPilot-Crawler/1.0")
	if token != "" {
		client.SetHeader("Authorization", "token "+token)
	}
	return &GitHubSource{client: client}
}

func (g *GitHubSource) Profile() Profile {
	return Profile{
		Tag:          TagGitHub,
		Region:       "Global",
		CategorySlug: "dev",
		Limit:        githubPerPage,
		Delay:        3 * time.Second,
	}
}

// Discover searches repositories and maps each to an item named owner/name.
func (g *GitHubSource) Discover(ctx context.Context) ([]models.DiscoveredItem, error) {
	var out githubSearch
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        githubQuery,
			"sort":     "updated",
			"order":    "desc",
			"per_page": strconv.Itoa(githubPerPage),
		}).
		SetResult(&out).
		Get("/search/repositories")
	if err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("github search: status %d", resp.StatusCode())
	}

	items := make([]models.DiscoveredItem, 0, len(out.Items))
	for _, repo := range out.Items {
		if repo.HTMLURL == "" || repo.Name == "" {
			continue
		}
		desc := strings.TrimSpace(repo.Description)
		if desc == "" {
			desc = githubDefaultDesc
		}
		items = append(items, models.DiscoveredItem{
			Name:        repo.Owner.Login + "/" + repo.Name,
			URL:         repo.HTMLURL,
			Description: desc,
			Logo:        repo.Owner.AvatarURL,
			SourceTag:   TagGitHub,
		})
	}
	return items, nil
}
