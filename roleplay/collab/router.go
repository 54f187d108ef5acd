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

// routerMessageWindow bounds how much transcript the classifier sees. The
// latest agent reply plus a few turns of context is enough to label it.
const routerMessageWindow = 10

type routerImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func newRouter(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*routerImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: router system prompt", contractx.ErrPromptMissing)
	}

	runner, err := compileCollaboratorGraph(ctx, chatModel, systemPrompt, "roleplay.router_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile router graph: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{runner: runner}, nil
}

func (r *routerImpl) Route(ctx context.Context, req contractx.RouterRequest) (contractx.RouterVerdict, error) {
	if req.StageID <= 0 {
		return contractx.RouterVerdict{}, fmt.Errorf("%w: stage id must be positive", contractx.ErrValidation)
	}
	if len(req.Messages) == 0 {
		return contractx.RouterVerdict{}, fmt.Errorf("%w: router needs at least one message", contractx.ErrValidation)
	}

	payload := map[string]any{
		"stage_id": req.StageID,
		"messages": renderMessages(req.Messages, routerMessageWindow),
	}
	if len(req.Hints) > 0 {
		payload["remaining_utterance_hints"] = req.Hints
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.RouterVerdict{}, fmt.Errorf("%w: marshal router payload: %v", contractx.ErrValidation, err)
	}

	msg, err := r.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.RouterVerdict{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.RouterVerdict{}, fmt.Errorf("%w: empty router response", contractx.ErrSchemaViolation)
	}

	verdict, err := decodeStructured[contractx.RouterVerdict](msg.Content)
	if err != nil {
		return contractx.RouterVerdict{}, err
	}

	verdict.Normalize()
	verdict.Reason = strings.TrimSpace(verdict.Reason)
	return verdict, nil
}
