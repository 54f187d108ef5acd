package roleplaynode

import (
	"context"
	"fmt"

	logx "github.com/rudra2807/AgentCoach-AI/pkg/logger"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

// AnalyzeTurn scores the trainee's reply. A failed analysis degrades to a
// neutral judgment instead of failing the turn; the per-turn log is
// coaching signal, not control flow.
func AnalyzeTurn(
	ctx context.Context,
	in *GraphState,
	analyzer contractx.TurnAnalyzer,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	analysis, err := analyzer.AnalyzeTurn(ctx, contractx.TurnAnalysisRequest{
		StageID:             in.Session.StageID,
		LastCustomerMessage: in.Session.LastTextBy(contractx.SpeakerCustomer),
		AgentMessage:        in.Text,
		Signals:             in.Session.SignalsMap(),
	})
	if err != nil {
		lg := logx.Component("roleplay.turn")
		lg.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("turn analysis failed, recording neutral judgment")
		analysis = neutralAnalysis()
	}

	in.Analysis = analysis
	in.Session.TurnAnalyses = append(in.Session.TurnAnalyses, sessionx.TurnRecord{
		StageID:      in.Session.StageID,
		AgentMessage: in.Text,
		Analysis:     analysis,
	})
	return in, nil
}

func neutralAnalysis() contractx.TurnAnalysis {
	a := contractx.TurnAnalysis{
		StageAlignment: contractx.AlignmentAcceptable,
		PushinessScore: contractx.DefaultScore,
		ClarityScore:   contractx.DefaultScore,
		DiscoveryScore: contractx.DefaultScore,
		Confidence:     contractx.DefaultConfidence,
	}
	a.Normalize()
	return a
}
