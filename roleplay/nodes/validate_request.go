package roleplaynode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

var (
	ErrInvalidMessage = errors.New("agent message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// Mode selects where customer lines come from: the script's authored
// utterances or the generator collaborator.
type Mode string

const (
	ModeScripted   Mode = "scripted"
	ModeGenerative Mode = "generative"
)

type GraphInput struct {
	SessionID string
	Text      string
}

// GraphOutput is the per-turn result handed back to the caller: the
// simulated customer's reply (nil once the session is complete), the stage
// after progression, and the turn's judgments.
type GraphOutput struct {
	SessionID string
	StageID   int
	Done      bool
	Reply     *contractx.ChatMessage
	Verdict   contractx.RouterVerdict
	Analysis  contractx.TurnAnalysis
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time
	Mode      Mode

	Session *sessionx.Session
	Script  *scriptx.Script

	Analysis contractx.TurnAnalysis
	Verdict  contractx.RouterVerdict

	Reply *contractx.ChatMessage
	Done  bool
}

func ValidateRequest(in GraphInput, mode Mode, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		Mode:      mode,
	}, nil
}
