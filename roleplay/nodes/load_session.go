package roleplaynode

import (
	"context"
	"fmt"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

func LoadSession(
	ctx context.Context,
	in *GraphState,
	store sessionx.Store,
	sc *scriptx.Script,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.ScriptID != sc.ScriptID {
		return nil, fmt.Errorf("%w: session %s belongs to script %s", contractx.ErrValidation, sess.SessionID, sess.ScriptID)
	}

	in.Session = sess
	in.Script = sc
	return in, nil
}

// RecordAgentMessage appends the trainee's reply to the transcript before
// any judgment runs, so a failed turn still leaves the message on record
// once the session is saved.
func RecordAgentMessage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.EnsureStageMemory(in.Session.StageID)
	in.Session.AppendMessage(contractx.ChatMessage{
		Role: contractx.SpeakerAgent,
		Text: in.Text,
		TS:   in.Now,
	})
	return in, nil
}
