package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/meeting-notes/internal/infra/llm/openai"
	apperrors "github.com/yanqian/meeting-notes/pkg/errors"
	"github.com/yanqian/meeting-notes/pkg/metrics"
)

const systemPrompt = "You are an assistant that writes clear, structured meeting summaries. " +
	"Always be concise, faithful to the transcript, and follow the user instruction. " +
	"Prefer bullet points with short, direct sentences. " +
	"Include action items with owners and due dates when present."

// Service exposes summarization capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

// ChatClient performs one chat completion. A nil ChatClient selects the
// heuristic fallback.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	return &service{cfg: cfg, client: client, logger: logger.With("component", "summarizer.service")}
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	if req.Transcript == "" || req.Prompt == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "transcript and prompt are required", nil)
	}

	if s.client == nil {
		return Response{
			Summary: heuristicSummary(req.Transcript, req.Prompt),
			Model:   FallbackModel,
		}, nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    buildMessages(req),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("llm request failed", "model", s.cfg.Model, "error", err)
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "Failed to generate summary", err)
	}
	if len(resp.Choices) == 0 {
		s.logger.Error("llm returned no choices", "model", s.cfg.Model)
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "Failed to generate summary", nil)
	}

	model := resp.Model
	if model == "" {
		model = s.cfg.Model
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	s.logger.Debug("llm response received", "model", model, "totalTokens", usage.TotalTokens)

	return Response{
		Summary:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      model,
		TokenUsage: usage.Ptr(),
	}, nil
}

func buildMessages(req Request) []openai.Message {
	return []openai.Message{
		{Role: openai.RoleSystem, Content: systemPrompt},
		{Role: openai.RoleUser, Content: fmt.Sprintf("Instruction: %s\n\nTranscript:\n%s", req.Prompt, req.Transcript)},
	}
}
