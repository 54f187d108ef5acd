package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

// sessionAnalyzerImpl calls the chat completions endpoint directly instead
// of going through a compiled graph. The synthesis runs once per session
// at report time, outside the turn pipeline.
type sessionAnalyzerImpl struct {
	client       *openaisdk.Client
	model        string
	temperature  float64
	systemPrompt string
}

func newSessionAnalyzer(
	client *openaisdk.Client,
	modelName string,
	systemPrompt string,
	temperature float32,
) (*sessionAnalyzerImpl, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: session analyzer client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("%w: session analyzer model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: session analyzer system prompt", contractx.ErrPromptMissing)
	}

	return &sessionAnalyzerImpl{
		client:       client,
		model:        strings.TrimSpace(modelName),
		temperature:  float64(temperature),
		systemPrompt: systemPrompt,
	}, nil
}

func (s *sessionAnalyzerImpl) Synthesize(ctx context.Context, req contractx.SessionSynthesisRequest) (contractx.SessionSynthesis, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return contractx.SessionSynthesis{}, fmt.Errorf("%w: transcript is empty", contractx.ErrValidation)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return contractx.SessionSynthesis{}, fmt.Errorf("%w: marshal synthesis payload: %v", contractx.ErrValidation, err)
	}

	resp, err := s.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(s.systemPrompt),
			openaisdk.UserMessage(string(input)),
		},
		Temperature: openaisdk.Float(s.temperature),
	})
	if err != nil {
		return contractx.SessionSynthesis{}, fmt.Errorf("%w: session analyzer invoke: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.SessionSynthesis{}, fmt.Errorf("%w: session analyzer returned no choices", contractx.ErrSchemaViolation)
	}

	out, err := decodeStructured[contractx.SessionSynthesis](resp.Choices[0].Message.Content)
	if err != nil {
		return contractx.SessionSynthesis{}, err
	}

	out.Normalize()
	return out, nil
}
