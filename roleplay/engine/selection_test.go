package engine

import (
	"testing"
	"time"

	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func testScript() *scriptx.Script {
	return &scriptx.Script{
		ScriptID:   "test-script",
		Version:    1,
		StartStage: 1,
		Stages: []scriptx.Stage{
			{StageID: 1, Name: "opening", Policy: scriptx.StagePolicy{ProgressThreshold: 80, MaxUtterances: 3}},
			{StageID: 2, Name: "discovery", Policy: scriptx.StagePolicy{ProgressThreshold: 80, RequiredTags: []string{"timeline", "budget"}}},
			{StageID: 3, Name: "objections", Policy: scriptx.StagePolicy{ProgressThreshold: 80, Optional: true, NeededWhen: scriptx.NeededWhenObjections}},
			{StageID: 4, Name: "close", Policy: scriptx.StagePolicy{ProgressThreshold: 70}},
		},
		Transitions: []scriptx.Transition{
			{FromStage: 1, Trigger: "agent_pushes_listings_early", ToStage: 3},
			{FromStage: 2, Trigger: "agent_pushes_offer_or_pressure", ToStage: 3},
		},
		Utterances: []scriptx.Utterance{
			{ID: "s1_a", StageID: 1, Text: "Hi.", VariantGroup: "intro", VariantKey: "a", Tags: []string{"icebreaker"}},
			{ID: "s1_b", StageID: 1, Text: "Hello.", VariantGroup: "intro", VariantKey: "b", Tags: []string{"icebreaker"}},
			{ID: "s1_c", StageID: 1, Text: "How does this work?"},
			{ID: "s2_budget", StageID: 2, Text: "Around 450.", Tags: []string{"budget"}, Requires: []string{"s2_timeline"}},
			{ID: "s2_needs", StageID: 2, Text: "Commute matters.", Tags: []string{"needs"}},
			{ID: "s2_timeline", StageID: 2, Text: "Four months.", Tags: []string{"timeline"}},
			{ID: "s3_fees", StageID: 3, Text: "What do I pay you for?", Tags: []string{"objection"}},
			{ID: "s4_next", StageID: 4, Text: "What next?", Tags: []string{"next_steps"}},
		},
	}
}

func newTestSession(sc *scriptx.Script) *sessionx.Session {
	s := sessionx.New(sc.ScriptID, sc.Version, sc.StartStage, testNow())
	s.EnsureStageMemory(s.StageID)
	return s
}

func TestPickNextIsDeterministicAndDedupes(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)

	res := PickNext(sess, sc, testNow())
	if res.Done || res.Message == nil {
		t.Fatalf("expected a message, got done=%v", res.Done)
	}
	if got := res.Message.Meta["utterance_id"]; got != "s1_a" {
		t.Fatalf("expected lowest-id candidate s1_a, got %v", got)
	}
	if !sess.UtteranceUsed("s1_a") {
		t.Fatalf("picked utterance must be marked used")
	}
	if sess.StageUtterancesUsedCount[1] != 1 {
		t.Fatalf("stage counter must move on emit")
	}

	// A fresh session in the same state picks the same line.
	other := newTestSession(sc)
	res2 := PickNext(other, sc, testNow())
	if res2.Message.Meta["utterance_id"] != "s1_a" {
		t.Fatalf("identical state must yield identical choice")
	}
}

func TestPickNextRespectsVariantLock(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)

	PickNext(sess, sc, testNow()) // s1_a locks intro=a
	res := PickNext(sess, sc, testNow())
	if got := res.Message.Meta["utterance_id"]; got != "s1_c" {
		t.Fatalf("sibling variant must be blocked after lock, got %v", got)
	}
}

func TestPickNextRespectsRequires(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)
	sess.StageID = 2
	sess.EnsureStageMemory(2)

	res := PickNext(sess, sc, testNow())
	if got := res.Message.Meta["utterance_id"]; got != "s2_needs" {
		t.Fatalf("s2_budget requires s2_timeline and must not lead, got %v", got)
	}
}

func TestPickNextByTagsPrefersOverlap(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)
	sess.StageID = 2
	sess.EnsureStageMemory(2)

	res := PickNextByTags(sess, sc, 2, []string{"timeline"}, testNow())
	if got := res.Message.Meta["utterance_id"]; got != "s2_timeline" {
		t.Fatalf("expected tag match s2_timeline, got %v", got)
	}

	// With the dependency satisfied the budget line becomes reachable.
	res = PickNextByTags(sess, sc, 2, []string{"budget"}, testNow())
	if got := res.Message.Meta["utterance_id"]; got != "s2_budget" {
		t.Fatalf("expected s2_budget after requirement met, got %v", got)
	}

	// No overlap falls back to the first eligible line of the stage.
	res = PickNextByTags(sess, sc, 2, []string{"unrelated"}, testNow())
	if got := res.Message.Meta["utterance_id"]; got != "s2_needs" {
		t.Fatalf("expected fallback to first eligible, got %v", got)
	}
}

func TestPickNextPlaysScriptToExhaustion(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)

	var picked []string
	for {
		res := PickNext(sess, sc, testNow())
		if res.Done {
			break
		}
		picked = append(picked, res.Message.Meta["utterance_id"].(string))
		if len(picked) > len(sc.Utterances) {
			t.Fatalf("picker failed to terminate: %v", picked)
		}
	}

	// One intro variant is locked out, everything else plays exactly once.
	if len(picked) != len(sc.Utterances)-1 {
		t.Fatalf("expected %d picks, got %v", len(sc.Utterances)-1, picked)
	}
	seen := make(map[string]bool)
	for _, id := range picked {
		if seen[id] {
			t.Fatalf("utterance %q repeated", id)
		}
		seen[id] = true
	}
	if seen["s1_b"] {
		t.Fatalf("locked-out variant must never play")
	}
}

func TestPickNextStopsOnBackwardStageChain(t *testing.T) {
	t.Parallel()

	// Hand-built scripts bypass load-time validation; a backward next_stage
	// must exhaust the picker, not send it into a cycle or a replay of
	// earlier stages.
	sc := testScript()
	back := 1
	sc.StageByID(2).Policy.NextStage = &back

	sess := newTestSession(sc)
	sess.StageID = 2
	sess.EnsureStageMemory(2)
	for _, id := range []string{"s2_budget", "s2_needs", "s2_timeline"} {
		sess.MarkUtteranceUsed(id)
	}

	res := PickNext(sess, sc, testNow())
	if !res.Done {
		t.Fatalf("expected done on a backward chain, got %+v", res.Message)
	}
	if sess.StageID != 2 {
		t.Fatalf("session must not move backward, got stage %d", sess.StageID)
	}
}

func TestRemainingHints(t *testing.T) {
	t.Parallel()

	sc := testScript()
	sess := newTestSession(sc)
	sess.MarkUtteranceUsed("s1_a")

	hints := RemainingHints(sess, sc, 3)
	if len(hints) != 3 {
		t.Fatalf("expected limit respected, got %d", len(hints))
	}
	for i := 1; i < len(hints); i++ {
		if hints[i-1].ID >= hints[i].ID {
			t.Fatalf("hints must be id-ordered: %v", hints)
		}
	}
	for _, h := range hints {
		if h.ID == "s1_a" {
			t.Fatalf("used utterances must not appear in hints")
		}
	}
}
