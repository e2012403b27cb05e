package summarizer

import "github.com/yanqian/meeting-notes/pkg/metrics"

// FallbackModel identifies summaries produced without a language model.
const FallbackModel = "fallback-local"

// Config tunes the external summarization call.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Request represents the incoming summarization payload.
type Request struct {
	Transcript string `json:"transcript" validate:"required"`
	Prompt     string `json:"prompt" validate:"required"`
}

// Response is returned by the summarize endpoint.
type Response struct {
	Summary    string              `json:"summary"`
	Model      string              `json:"model"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}
