// Package openai talks to OpenAI compatible chat completion endpoints such
// as Groq and OpenAI itself. The request and response types here are the
// port the summarizer depends on; go-openai does the wire work.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	// GroqBaseURL is the default endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"
	// OpenAIBaseURL serves api.openai.com keys.
	OpenAIBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 30 * time.Second
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message mirrors the chat message structure.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the payload sent to the chat completions API.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is a single completion candidate.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatCompletionResponse captures the response for non streaming calls.
type ChatCompletionResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Client wraps a go-openai client pointed at a chat completions endpoint.
type Client struct {
	baseURL string
	timeout time.Duration
	api     *goopenai.Client
}

// NewClient constructs a client. An empty baseURL selects Groq and a zero
// timeout selects 30 seconds.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = GroqBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		api:     goopenai.NewClientWithConfig(cfg),
	}, nil
}

// CreateChatCompletion performs a single synchronous completion call. Non 2xx
// answers surface as *goopenai.APIError or *goopenai.RequestError.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var out ChatCompletionResponse
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return out, fmt.Errorf("request chat completion: %w", err)
	}

	out.Model = resp.Model
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Message:      Message{Role: choice.Message.Role, Content: choice.Message.Content},
			FinishReason: string(choice.FinishReason),
		})
	}
	out.Usage = Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return out, nil
}
