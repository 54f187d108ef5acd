package roleplaynode

import (
	"context"
	"fmt"

	logx "github.com/rudra2807/AgentCoach-AI/pkg/logger"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	enginex "github.com/rudra2807/AgentCoach-AI/roleplay/engine"
)

// hintLimit bounds the remaining-utterance view given to the router.
const hintLimit = 25

// RouteTurn classifies the trainee's reply. Routing failure falls back to
// the neutral stay verdict so a flaky model call never kills a turn; the
// stage simply does not move.
func RouteTurn(
	ctx context.Context,
	in *GraphState,
	router contractx.Router,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	req := contractx.RouterRequest{
		StageID:  in.Session.StageID,
		Messages: in.Session.Messages,
	}
	if in.Mode == ModeScripted {
		req.Hints = enginex.RemainingHints(in.Session, in.Script, hintLimit)
	}

	verdict, err := router.Route(ctx, req)
	if err != nil {
		lg := logx.Component("roleplay.turn")
		lg.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("routing failed, applying neutral verdict")
		verdict = contractx.DefaultVerdict()
	}

	in.Verdict = verdict
	return in, nil
}

// MergeSignals folds the verdict's extracted facts into session memory.
func MergeSignals(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.MergeSignals(in.Verdict.Signals)
	return in, nil
}
