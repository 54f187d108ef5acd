package collab

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func sampleMessages() []contractx.ChatMessage {
	return []contractx.ChatMessage{
		{Role: contractx.SpeakerCustomer, Text: "I'm not sure I need an agent."},
		{Role: contractx.SpeakerAgent, Text: "What's making you hesitate?"},
	}
}

func TestRouterRouteSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"agent_label":"good_discovery","trigger":null,"progress_signal":"advance","stage_progress_delta":120,"extracted_signals":{"timeline_months":4,"needs":["office"],"research_mode":"online_browsing","confidence":0.9},"reason":"Specific follow-up tied to hesitation."}`},
		},
	}

	router, err := newRouter(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	out, err := router.Route(context.Background(), contractx.RouterRequest{
		StageID:  2,
		Messages: sampleMessages(),
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}

	if out.AgentLabel != contractx.LabelGoodDiscovery {
		t.Fatalf("unexpected label %q", out.AgentLabel)
	}
	if out.Delta != contractx.MaxProgressDelta {
		t.Fatalf("delta must be clamped on receipt, got %d", out.Delta)
	}
	if out.Signals.TimelineMonths == nil || *out.Signals.TimelineMonths != 4 {
		t.Fatalf("signals not decoded: %+v", out.Signals)
	}
}

func TestRouterRouteValidation(t *testing.T) {
	t.Parallel()

	router, err := newRouter(context.Background(), &fakeChatModel{}, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	if _, err := router.Route(context.Background(), contractx.RouterRequest{StageID: 0, Messages: sampleMessages()}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for stage 0, got %v", err)
	}
	if _, err := router.Route(context.Background(), contractx.RouterRequest{StageID: 1}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation without messages, got %v", err)
	}
}

func TestRouterRouteModelFailure(t *testing.T) {
	t.Parallel()

	router, err := newRouter(context.Background(), &fakeChatModel{err: errors.New("boom")}, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	if _, err := router.Route(context.Background(), contractx.RouterRequest{StageID: 1, Messages: sampleMessages()}); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestNewRouterRequiresPrompt(t *testing.T) {
	t.Parallel()

	if _, err := newRouter(context.Background(), &fakeChatModel{}, "   "); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}

func TestGeneratorGenerateSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: "```json\n{\"text\":\"Honestly, what would I be paying you for?\",\"intent\":\"ask_fees\",\"requires_answer\":true}\n```"},
		},
	}

	gen, err := newGenerator(context.Background(), fake, "generator prompt")
	if err != nil {
		t.Fatalf("newGenerator() error = %v", err)
	}

	out, err := gen.Generate(context.Background(), contractx.GenerateRequest{
		StageID:     3,
		DesiredTags: []string{"objection"},
		Messages:    sampleMessages(),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if out.Intent != "ask_fees" || !out.RequiresAnswer {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if out.StageID != 3 {
		t.Fatalf("missing stage must echo the request, got %d", out.StageID)
	}
	if out.Consistency != contractx.ConsistencyOK {
		t.Fatalf("consistency must default to ok, got %q", out.Consistency)
	}
}

func TestGeneratorScrubsAddresses(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"text":"I saw 1427 Maple Grove Avenue online, is it still available?","intent":"ask_listing","consistency_check":"ok"}`},
		},
	}

	gen, err := newGenerator(context.Background(), fake, "generator prompt")
	if err != nil {
		t.Fatalf("newGenerator() error = %v", err)
	}

	out, err := gen.Generate(context.Background(), contractx.GenerateRequest{
		StageID:  2,
		Messages: sampleMessages(),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if out.Text != "I saw a specific address online, is it still available?" {
		t.Fatalf("address not scrubbed: %q", out.Text)
	}
	if out.Consistency != contractx.ConsistencyRisk {
		t.Fatalf("scrubbed output must be flagged, got %q", out.Consistency)
	}
}

func TestGeneratorRejectsEmptyText(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"text":"   ","intent":"ask_fees"}`},
		},
	}

	gen, err := newGenerator(context.Background(), fake, "generator prompt")
	if err != nil {
		t.Fatalf("newGenerator() error = %v", err)
	}

	if _, err := gen.Generate(context.Background(), contractx.GenerateRequest{StageID: 1, First: true}); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestTurnAnalyzerSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"answered_customer_question":true,"acknowledged_concern":true,"stage_alignment":"strong","pushiness_score":0.1,"clarity_score":0.9,"discovery_score":0.8,"suggested_improvement":"Ask about timing next.","confidence":0.85}`},
		},
	}

	analyzer, err := newTurnAnalyzer(context.Background(), fake, "analyzer prompt")
	if err != nil {
		t.Fatalf("newTurnAnalyzer() error = %v", err)
	}

	out, err := analyzer.AnalyzeTurn(context.Background(), contractx.TurnAnalysisRequest{
		StageID:             2,
		LastCustomerMessage: "I'm not sure I need an agent.",
		AgentMessage:        "What's making you hesitate?",
	})
	if err != nil {
		t.Fatalf("AnalyzeTurn() error = %v", err)
	}

	if out.StageAlignment != contractx.AlignmentStrong || out.ClarityScore != 0.9 {
		t.Fatalf("unexpected analysis: %+v", out)
	}
	if out.Strengths == nil {
		t.Fatalf("nil slices must be normalized")
	}
}

func TestTurnAnalyzerValidation(t *testing.T) {
	t.Parallel()

	analyzer, err := newTurnAnalyzer(context.Background(), &fakeChatModel{}, "analyzer prompt")
	if err != nil {
		t.Fatalf("newTurnAnalyzer() error = %v", err)
	}

	if _, err := analyzer.AnalyzeTurn(context.Background(), contractx.TurnAnalysisRequest{StageID: 1, AgentMessage: "  "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty agent message, got %v", err)
	}
}

func TestSessionAnalyzerRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := newSessionAnalyzer(nil, "model", "prompt", 0.2); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation without client, got %v", err)
	}
}
