package engine

import (
	"math"

	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

// Scores is the deterministic session-level reduction of the per-turn
// judgment log. Means are 0 on an empty log; Overall weighs clarity 0.3,
// discovery 0.4, and composure (one minus pushiness) 0.3.
type Scores struct {
	Overall      int     `json:"overall_score"`
	ClarityAvg   float64 `json:"clarity_avg"`
	DiscoveryAvg float64 `json:"discovery_avg"`
	PushinessAvg float64 `json:"pushiness_avg"`
}

// Aggregate reduces the ordered turn log to session scores. It is a pure
// function: the same log always yields the same output.
func Aggregate(turns []sessionx.TurnRecord) Scores {
	var pushiness, clarity, discovery float64
	for _, t := range turns {
		pushiness += t.Analysis.PushinessScore
		clarity += t.Analysis.ClarityScore
		discovery += t.Analysis.DiscoveryScore
	}
	n := float64(len(turns))
	if n > 0 {
		pushiness /= n
		clarity /= n
		discovery /= n
	}

	return Scores{
		Overall:      Percent(0.3*clarity + 0.4*discovery + 0.3*(1-pushiness)),
		ClarityAvg:   clarity,
		DiscoveryAvg: discovery,
		PushinessAvg: pushiness,
	}
}

// Percent renders a [0,1] mean as a rounded 0-100 score.
func Percent(mean float64) int {
	return int(math.Round(mean * 100))
}
