package simulator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	logx "github.com/rudra2807/AgentCoach-AI/pkg/logger"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	enginex "github.com/rudra2807/AgentCoach-AI/roleplay/engine"
	nodex "github.com/rudra2807/AgentCoach-AI/roleplay/nodes"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Mode = nodex.Mode

const (
	ModeScripted   = nodex.ModeScripted
	ModeGenerative = nodex.ModeGenerative
)

type Config struct {
	Mode Mode
}

// Simulator runs branching roleplay sessions against one loaded script:
// it opens sessions, drives the per-turn pipeline, and produces the
// end-of-session report.
type Simulator struct {
	store  sessionx.Store
	models contractx.Registry
	script *scriptx.Script
	mode   Mode

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store sessionx.Store,
	models contractx.Registry,
	script *scriptx.Script,
	cfg Config,
) (*Simulator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if script == nil {
		return nil, errors.New("script is required")
	}

	mode := cfg.Mode
	switch mode {
	case nodex.ModeScripted, nodex.ModeGenerative:
	case "":
		mode = nodex.ModeScripted
	default:
		return nil, fmt.Errorf("unknown simulator mode %q", cfg.Mode)
	}

	s := &Simulator{
		store:  store,
		models: models,
		script: script,
		mode:   mode,
		now:    time.Now,
	}

	graphRunner, err := s.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// StartSession creates a fresh session on the script's start stage and
// emits the opening customer line.
func (s *Simulator) StartSession(ctx context.Context) (*sessionx.Session, *contractx.ChatMessage, error) {
	now := s.now().UTC()
	sess := sessionx.New(s.script.ScriptID, s.script.Version, s.script.StartStage, now)
	sess.EnsureStageMemory(sess.StageID)

	var opening *contractx.ChatMessage
	if s.mode == nodex.ModeScripted {
		res := enginex.PickNext(sess, s.script, now)
		if res.Done {
			return nil, nil, fmt.Errorf("%w: script %s has no opening utterance", contractx.ErrValidation, s.script.ScriptID)
		}
		opening = res.Message
	} else {
		out, err := s.models.Generator().Generate(ctx, contractx.GenerateRequest{
			StageID: sess.StageID,
			First:   true,
		})
		if err != nil {
			return nil, nil, err
		}
		sess.RecordIntent(out.Intent)
		msg := contractx.ChatMessage{
			Role: contractx.SpeakerCustomer,
			Text: out.Text,
			TS:   now,
			Meta: map[string]any{
				"stage_id":  out.StageID,
				"tags":      out.Tags,
				"intent":    out.Intent,
				"generated": true,
			},
		}
		sess.AppendMessage(msg)
		sess.BumpUtteranceCount(sess.StageID)
		opening = &msg
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, opening, nil
}

// HandleTurn runs one full trainee turn through the compiled pipeline.
func (s *Simulator) HandleTurn(ctx context.Context, sessionID string, text string) (nodex.GraphOutput, error) {
	return s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
}

// Report is the end-of-session outcome: the deterministic aggregate scores
// plus, when the model call succeeds, the narrative synthesis.
type Report struct {
	SessionID string                      `json:"session_id"`
	Turns     int                         `json:"turns"`
	Scores    enginex.Scores              `json:"scores"`
	Synthesis *contractx.SessionSynthesis `json:"synthesis,omitempty"`
}

// SessionReport aggregates the session's turn log and asks the session
// analyzer for the narrative. Synthesis failure degrades to a scores-only
// report; the numbers never depend on a model call.
func (s *Simulator) SessionReport(ctx context.Context, sessionID string) (Report, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}

	scores := enginex.Aggregate(sess.TurnAnalyses)
	report := Report{
		SessionID: sess.SessionID,
		Turns:     len(sess.TurnAnalyses),
		Scores:    scores,
	}

	transcript := renderTranscript(sess.Messages)
	if transcript == "" {
		return report, nil
	}

	synth, err := s.models.SessionAnalyzer().Synthesize(ctx, contractx.SessionSynthesisRequest{
		Transcript:   transcript,
		OverallScore: scores.Overall,
		ClarityAvg:   scores.ClarityAvg,
		DiscoveryAvg: scores.DiscoveryAvg,
		PushinessAvg: scores.PushinessAvg,
	})
	if err != nil {
		lg := logx.Component("roleplay.simulator")
		lg.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("session synthesis failed, returning scores only")
		return report, nil
	}

	report.Synthesis = &synth
	return report, nil
}

// EndSession discards the session state.
func (s *Simulator) EndSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func renderTranscript(messages []contractx.ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
