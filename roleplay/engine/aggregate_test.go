package engine

import (
	"testing"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

func turn(clarity, discovery, pushiness float64) sessionx.TurnRecord {
	return sessionx.TurnRecord{
		Analysis: contractx.TurnAnalysis{
			ClarityScore:   clarity,
			DiscoveryScore: discovery,
			PushinessScore: pushiness,
		},
	}
}

func TestAggregateEmptyLog(t *testing.T) {
	t.Parallel()

	got := Aggregate(nil)
	if got.Overall != 30 {
		t.Fatalf("empty log: expected overall 30 (composure term only), got %d", got.Overall)
	}
	if got.ClarityAvg != 0 || got.DiscoveryAvg != 0 || got.PushinessAvg != 0 {
		t.Fatalf("empty log must have zero means: %+v", got)
	}
}

func TestAggregateWeighting(t *testing.T) {
	t.Parallel()

	turns := []sessionx.TurnRecord{
		turn(0.8, 0.6, 0.2),
	}
	got := Aggregate(turns)
	// 100 * (0.3*0.8 + 0.4*0.6 + 0.3*0.8) = 72
	if got.Overall != 72 {
		t.Fatalf("expected overall 72, got %d", got.Overall)
	}

	turns = []sessionx.TurnRecord{
		turn(1, 1, 0),
		turn(0, 0, 1),
	}
	got = Aggregate(turns)
	if got.ClarityAvg != 0.5 || got.DiscoveryAvg != 0.5 || got.PushinessAvg != 0.5 {
		t.Fatalf("unexpected means: %+v", got)
	}
	if got.Overall != 50 {
		t.Fatalf("expected overall 50, got %d", got.Overall)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	t.Parallel()

	turns := []sessionx.TurnRecord{
		turn(0.7, 0.9, 0.1),
		turn(0.4, 0.5, 0.6),
		turn(0.95, 0.3, 0.0),
	}
	first := Aggregate(turns)
	for i := 0; i < 5; i++ {
		if got := Aggregate(turns); got != first {
			t.Fatalf("aggregation not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	if got := Percent(0.716); got != 72 {
		t.Fatalf("expected rounding to 72, got %d", got)
	}
	if got := Percent(0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
