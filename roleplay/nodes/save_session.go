package roleplaynode

import (
	"context"
	"fmt"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

func SaveSession(
	ctx context.Context,
	in *GraphState,
	store sessionx.Store,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}

func FinalizeTurn(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	return GraphOutput{
		SessionID: in.SessionID,
		StageID:   in.Session.StageID,
		Done:      in.Done,
		Reply:     in.Reply,
		Verdict:   in.Verdict,
		Analysis:  in.Analysis,
	}, nil
}
