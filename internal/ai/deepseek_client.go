package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DeepSeekClient talks to an OpenAI-compatible chat completions endpoint.
type DeepSeekClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewDeepSeekClient(apiKey, model, baseURL string, timeout time.Duration) *DeepSeekClient {
	if model == "" {
		model = "deepseek-chat"
	}
	if baseURL == "" {
		baseURL = "https://api.deepseek.com"
	}
	return &DeepSeekClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Generate asks for a JSON object reply.
func (d *DeepSeekClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:          d.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var out chatResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetAuthToken(d.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(d.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if out.Error != nil {
		return "", fmt.Errorf("chat completion error: %s", out.Error.Message)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("chat completion status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content in response")
	}
	return out.Choices[0].Message.Content, nil
}
