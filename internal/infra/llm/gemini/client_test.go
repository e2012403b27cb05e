package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/yanqian/meeting-notes/internal/infra/llm/openai"
)

type stubModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	s.contents = contents
	s.config = config
	return s.resp, s.err
}

func TestCreateChatCompletionMapsRequestAndResponse(t *testing.T) {
	stub := &stubModels{resp: &genai.GenerateContentResponse{
		ModelVersion: "gemini-2.5-flash-001",
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "- Decision "},
				{Text: "made"},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     20,
			CandidatesTokenCount: 5,
			TotalTokenCount:      25,
		},
	}}
	client := newClient(stub, 0)

	resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: "gemini-2.5-flash",
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: "be brief"},
			{Role: openai.RoleUser, Content: "Instruction: x"},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
	})
	require.NoError(t, err)

	require.Equal(t, "gemini-2.5-flash", stub.model)
	require.Len(t, stub.contents, 1)
	require.Equal(t, "Instruction: x", stub.contents[0].Parts[0].Text)
	require.Equal(t, int32(1200), stub.config.MaxOutputTokens)
	require.NotNil(t, stub.config.Temperature)
	require.InDelta(t, 0.2, *stub.config.Temperature, 1e-6)
	require.Equal(t, "be brief", stub.config.SystemInstruction.Parts[0].Text)

	require.Equal(t, "gemini-2.5-flash-001", resp.Model)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "- Decision made", resp.Choices[0].Message.Content)
	require.Equal(t, 25, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionPropagatesError(t *testing.T) {
	client := newClient(&stubModels{err: errors.New("quota exceeded")}, 0)

	_, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.ErrorContains(t, err, "quota exceeded")
}

func TestCreateChatCompletionNoCandidates(t *testing.T) {
	client := newClient(&stubModels{resp: &genai.GenerateContentResponse{}}, 0)

	resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	require.Empty(t, resp.Choices)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0)
	require.Error(t, err)
}
