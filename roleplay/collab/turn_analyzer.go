package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

type turnAnalyzerImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func newTurnAnalyzer(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*turnAnalyzerImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: turn analyzer system prompt", contractx.ErrPromptMissing)
	}

	runner, err := compileCollaboratorGraph(ctx, chatModel, systemPrompt, "roleplay.turn_analyzer_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile turn analyzer graph: %v", contractx.ErrModelInvoke, err)
	}
	return &turnAnalyzerImpl{runner: runner}, nil
}

func (a *turnAnalyzerImpl) AnalyzeTurn(ctx context.Context, req contractx.TurnAnalysisRequest) (contractx.TurnAnalysis, error) {
	if req.StageID <= 0 {
		return contractx.TurnAnalysis{}, fmt.Errorf("%w: stage id must be positive", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.AgentMessage) == "" {
		return contractx.TurnAnalysis{}, fmt.Errorf("%w: agent message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"stage_id":              req.StageID,
		"last_customer_message": req.LastCustomerMessage,
		"agent_response":        req.AgentMessage,
	}
	if len(req.Signals) > 0 {
		payload["known_signals"] = req.Signals
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.TurnAnalysis{}, fmt.Errorf("%w: marshal turn analysis payload: %v", contractx.ErrValidation, err)
	}

	msg, err := a.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.TurnAnalysis{}, fmt.Errorf("%w: turn analyzer invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.TurnAnalysis{}, fmt.Errorf("%w: empty turn analyzer response", contractx.ErrSchemaViolation)
	}

	out, err := decodeStructured[contractx.TurnAnalysis](msg.Content)
	if err != nil {
		return contractx.TurnAnalysis{}, err
	}

	out.Normalize()
	return out, nil
}
