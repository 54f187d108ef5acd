package engine

import (
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

// Stage progress score bounds. The score is a noisy, model-derived proxy
// for conversational progress; clamping both the per-turn delta and the
// running score bounds the blast radius of a single bad verdict.
const (
	MinStageScore = 0
	MaxStageScore = 120
)

// Advance folds one router verdict into the session's stage state: tag
// memory, hard transitions, the clamped score update, the advance decision,
// and optional-stage skipping. Stages only ever move forward.
func Advance(sess *sessionx.Session, sc *scriptx.Script, verdict contractx.RouterVerdict, tagsUsed []string) {
	current := sess.StageID
	sess.EnsureStageMemory(current)

	stage := sc.StageByID(current)
	if stage == nil {
		return
	}

	if len(tagsUsed) > 0 {
		sess.StageTagMemory[current] = append(sess.StageTagMemory[current], tagsUsed...)
	}

	// Hard transitions bypass scoring entirely; they exist for unambiguous
	// events that should not wait on score accumulation.
	if t := sc.TransitionFor(current, verdict.Trigger); t != nil && t.ToStage > current {
		enterStage(sess, t.ToStage)
		return
	}

	delta := contractx.ClampInt(verdict.Delta, contractx.MinProgressDelta, contractx.MaxProgressDelta)
	score := contractx.ClampInt(sess.StageProgressScore[current]+delta, MinStageScore, MaxStageScore)
	sess.StageProgressScore[current] = score

	next, hasNext := sc.NextStageID(current)
	if !hasNext || next <= current {
		return
	}

	policy := stage.Policy
	requiredSatisfied := tagsSatisfied(policy.RequiredTags, sess.StageTagMemory[current])
	utterCount := sess.StageUtterancesUsedCount[current]
	routerWantsAdvance := verdict.ProgressSignal == contractx.ProgressAdvance

	shouldAdvance := (routerWantsAdvance && score >= policy.ProgressThreshold && requiredSatisfied) ||
		score >= policy.ProgressThreshold ||
		utterCount >= policy.EffectiveMaxUtterances()
	if !shouldAdvance {
		return
	}

	// An optional stage that the accumulated signals say is unnecessary is
	// skipped forward once more with the same next-stage rule.
	if nextStage := sc.StageByID(next); nextStage != nil && nextStage.Policy.Optional {
		if !stageNeeded(nextStage.Policy.NeededWhen, sess.Signals) {
			if skipTo, ok := sc.NextStageID(next); ok && skipTo > next {
				enterStage(sess, skipTo)
				return
			}
		}
	}

	enterStage(sess, next)
}

func enterStage(sess *sessionx.Session, stageID int) {
	sess.StageID = stageID
	sess.EnsureStageMemory(stageID)
}

// tagsSatisfied is a set-membership check: duplicates in memory are allowed
// and irrelevant.
func tagsSatisfied(required []string, memory []string) bool {
	if len(required) == 0 {
		return true
	}
	seen := make(map[string]struct{}, len(memory))
	for _, tag := range memory {
		seen[tag] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := seen[tag]; !ok {
			return false
		}
	}
	return true
}

func stageNeeded(when scriptx.NeededWhen, signals sessionx.Signals) bool {
	switch when {
	case scriptx.NeededWhenObjections:
		return len(signals.Objections) > 0
	case scriptx.NeededWhenValueFrame:
		return signals.ValueFrameTrigger || signals.ResearchMode == contractx.ResearchOnlineBrowsing
	default:
		return true
	}
}
