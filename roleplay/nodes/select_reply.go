package roleplaynode

import (
	"context"
	"fmt"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	enginex "github.com/rudra2807/AgentCoach-AI/roleplay/engine"
)

// SelectCustomerReply produces the next customer line for the stage the
// session landed on after progression. Scripted mode draws from the
// authored utterances; generative mode asks the generator and feeds its
// intent into the anti-loop memory. Generation failure fails the turn:
// there is no scripted line to fall back on mid-conversation.
func SelectCustomerReply(
	ctx context.Context,
	in *GraphState,
	generator contractx.Generator,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Done {
		return in, nil
	}

	if in.Mode == ModeScripted {
		res := enginex.PickNextByTags(in.Session, in.Script, in.Session.StageID, remainingRequiredTags(in), in.Now)
		if res.Done {
			in.Done = true
			return in, nil
		}
		in.Reply = res.Message
		return in, nil
	}

	out, err := generator.Generate(ctx, contractx.GenerateRequest{
		StageID:     in.Session.StageID,
		DesiredTags: remainingRequiredTags(in),
		Messages:    in.Session.Messages,
		Signals:     in.Session.SignalsMap(),
		LastIntent:  in.Session.Signals.LastCustomerIntent,
		ReaskCounts: in.Session.Signals.ReaskCountByIntent,
	})
	if err != nil {
		return nil, err
	}

	in.Session.RecordIntent(out.Intent)
	msg := contractx.ChatMessage{
		Role: contractx.SpeakerCustomer,
		Text: out.Text,
		TS:   in.Now,
		Meta: map[string]any{
			"stage_id":  out.StageID,
			"tags":      out.Tags,
			"intent":    out.Intent,
			"generated": true,
		},
	}
	in.Session.AppendMessage(msg)
	in.Session.BumpUtteranceCount(in.Session.StageID)
	in.Reply = &msg
	return in, nil
}

// remainingRequiredTags lists the current stage's required tags not yet
// covered by its tag memory, steering selection toward what the stage
// still needs.
func remainingRequiredTags(in *GraphState) []string {
	stage := in.Script.StageByID(in.Session.StageID)
	if stage == nil || len(stage.Policy.RequiredTags) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, tag := range in.Session.StageTagMemory[in.Session.StageID] {
		seen[tag] = struct{}{}
	}

	remaining := make([]string, 0, len(stage.Policy.RequiredTags))
	for _, tag := range stage.Policy.RequiredTags {
		if _, ok := seen[tag]; !ok {
			remaining = append(remaining, tag)
		}
	}
	return remaining
}
