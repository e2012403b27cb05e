// Package gemini adapts the Gemini API to the chat completion shape used by
// the summarizer.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yanqian/meeting-notes/internal/infra/llm/openai"
)

const defaultTimeout = 30 * time.Second

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps a genai client.
type Client struct {
	models  generator
	timeout time.Duration
}

// NewClient builds a Gemini API client. baseURL is optional.
func NewClient(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(client.Models, timeout), nil
}

func newClient(models generator, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{models: models, timeout: timeout}
}

// CreateChatCompletion maps system messages to the system instruction and the
// remaining turns to contents, then performs one GenerateContent call.
func (c *Client) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var out openai.ChatCompletionResponse

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case openai.RoleSystem:
			system = append(system, msg.Content)
		case openai.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return out, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return out, errors.New("gemini returned no response")
	}

	out.Model = resp.ModelVersion
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}
		out.Choices = append(out.Choices, openai.Choice{
			Message:      openai.Message{Role: openai.RoleAssistant, Content: text.String()},
			FinishReason: strings.ToLower(string(candidate.FinishReason)),
		})
	}
	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = openai.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return out, nil
}
