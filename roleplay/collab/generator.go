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

// generatorMessageWindow is wider than the router's so the persona keeps
// more conversational continuity than the classifier needs.
const generatorMessageWindow = 12

type generatorImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func newGenerator(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*generatorImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: generator system prompt", contractx.ErrPromptMissing)
	}

	runner, err := compileCollaboratorGraph(ctx, chatModel, systemPrompt, "roleplay.generator_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile generator graph: %v", contractx.ErrModelInvoke, err)
	}
	return &generatorImpl{runner: runner}, nil
}

func (g *generatorImpl) Generate(ctx context.Context, req contractx.GenerateRequest) (contractx.GeneratedUtterance, error) {
	if req.StageID <= 0 {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: stage id must be positive", contractx.ErrValidation)
	}
	if !req.First && len(req.Messages) == 0 {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: generator needs conversation history", contractx.ErrValidation)
	}

	payload := map[string]any{
		"stage_id":     req.StageID,
		"desired_tags": req.DesiredTags,
		"messages":     renderMessages(req.Messages, generatorMessageWindow),
		"first":        req.First,
	}
	if len(req.Signals) > 0 {
		payload["known_signals"] = req.Signals
	}
	if req.LastIntent != "" {
		payload["last_customer_intent"] = req.LastIntent
	}
	if len(req.ReaskCounts) > 0 {
		payload["reask_counts"] = req.ReaskCounts
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: marshal generator payload: %v", contractx.ErrValidation, err)
	}

	msg, err := g.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: generator invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: empty generator response", contractx.ErrSchemaViolation)
	}

	out, err := decodeStructured[contractx.GeneratedUtterance](msg.Content)
	if err != nil {
		return contractx.GeneratedUtterance{}, err
	}

	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return contractx.GeneratedUtterance{}, fmt.Errorf("%w: generated utterance text is empty", contractx.ErrSchemaViolation)
	}

	out.Normalize(req.StageID, req.DesiredTags)
	if scrubbed, hit := ScrubAddress(out.Text); hit {
		out.Text = scrubbed
		out.Consistency = contractx.ConsistencyRisk
	}
	return out, nil
}
