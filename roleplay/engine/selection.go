package engine

import (
	"sort"
	"time"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
)

// PickResult is the outcome of a scripted selection. Done means the script
// is exhausted: no eligible utterance remains on any reachable stage.
type PickResult struct {
	Done    bool
	Message *contractx.ChatMessage
}

// PickNext selects the next scripted customer line for the session's
// current stage. When the stage has no eligible line left it advances
// through the script's next-stage chain and retries; an exhausted chain
// reports done. Identical session states always reach the same choice.
func PickNext(sess *sessionx.Session, sc *scriptx.Script, now time.Time) PickResult {
	candidates := eligibleCandidates(sess, sc, sess.StageID)
	if len(candidates) == 0 {
		// Forward-only, like progression: a non-increasing chain is treated
		// as exhausted rather than followed into a cycle.
		next, ok := sc.NextStageID(sess.StageID)
		if !ok || next <= sess.StageID {
			return PickResult{Done: true}
		}
		sess.StageID = next
		sess.EnsureStageMemory(next)
		return PickNext(sess, sc, now)
	}
	return emit(sess, candidates[0], now)
}

// PickNextByTags selects within a requested stage, preferring utterances
// whose tags intersect the desired set. Candidates are ranked by overlap
// count with lexicographic id as the tiebreak; with no positive-score
// candidate (or no tag preference) the first eligible line of the stage is
// taken, and PickNext is the last resort.
func PickNextByTags(sess *sessionx.Session, sc *scriptx.Script, stageID int, desiredTags []string, now time.Time) PickResult {
	desired := make(map[string]struct{}, len(desiredTags))
	for _, t := range desiredTags {
		if t != "" {
			desired[t] = struct{}{}
		}
	}

	candidates := eligibleCandidates(sess, sc, stageID)

	if len(desired) > 0 {
		type scored struct {
			u     scriptx.Utterance
			score int
		}
		ranked := make([]scored, 0, len(candidates))
		for _, u := range candidates {
			n := 0
			for _, tag := range u.Tags {
				if _, ok := desired[tag]; ok {
					n++
				}
			}
			if n > 0 {
				ranked = append(ranked, scored{u: u, score: n})
			}
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].score != ranked[j].score {
				return ranked[i].score > ranked[j].score
			}
			return ranked[i].u.ID < ranked[j].u.ID
		})
		if len(ranked) > 0 {
			sess.StageID = stageID
			sess.EnsureStageMemory(stageID)
			return emit(sess, ranked[0].u, now)
		}
	}

	// No tag match: fall back to the untagged search within the requested
	// stage, then to the stage-advancing picker.
	if len(candidates) > 0 {
		sess.StageID = stageID
		sess.EnsureStageMemory(stageID)
		return emit(sess, candidates[0], now)
	}
	return PickNext(sess, sc, now)
}

// RemainingHints lists up to limit unused utterances in id order, as a
// compact view of the remaining moves for the router.
func RemainingHints(sess *sessionx.Session, sc *scriptx.Script, limit int) []contractx.UtteranceHint {
	unused := make([]scriptx.Utterance, 0, len(sc.Utterances))
	for _, u := range sc.Utterances {
		if !sess.UtteranceUsed(u.ID) {
			unused = append(unused, u)
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].ID < unused[j].ID })

	if limit > 0 && len(unused) > limit {
		unused = unused[:limit]
	}
	hints := make([]contractx.UtteranceHint, 0, len(unused))
	for _, u := range unused {
		hints = append(hints, contractx.UtteranceHint{
			ID:      u.ID,
			StageID: u.StageID,
			Tags:    u.Tags,
			Text:    u.Text,
		})
	}
	return hints
}

func eligibleCandidates(sess *sessionx.Session, sc *scriptx.Script, stageID int) []scriptx.Utterance {
	out := make([]scriptx.Utterance, 0, 8)
	for _, u := range sc.Utterances {
		if u.StageID != stageID {
			continue
		}
		if eligible(sess, u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func eligible(sess *sessionx.Session, u scriptx.Utterance) bool {
	if sess.UtteranceUsed(u.ID) {
		return false
	}
	for _, req := range u.Requires {
		if !sess.UtteranceUsed(req) {
			return false
		}
	}
	if u.VariantGroup != "" {
		chosen, locked := sess.VariantSelections[u.VariantGroup]
		if locked && u.VariantKey != "" && chosen != u.VariantKey {
			return false
		}
	}
	return true
}

// emit applies the selection side effects: used-set growth, sticky variant
// lock, stage counter bump, and the appended customer message carrying the
// utterance metadata. All mutation is confined to the session.
func emit(sess *sessionx.Session, u scriptx.Utterance, now time.Time) PickResult {
	sess.LockVariant(u.VariantGroup, u.VariantKey)
	sess.MarkUtteranceUsed(u.ID)
	sess.BumpUtteranceCount(sess.StageID)

	tags := u.Tags
	if tags == nil {
		tags = []string{}
	}
	facts := u.Facts
	if facts == nil {
		facts = map[string]any{}
	}

	msg := contractx.ChatMessage{
		Role: contractx.SpeakerCustomer,
		Text: u.Text,
		TS:   now.UTC(),
		Meta: map[string]any{
			"utterance_id": u.ID,
			"stage_id":     u.StageID,
			"tags":         tags,
			"facts":        facts,
		},
	}
	sess.AppendMessage(msg)
	return PickResult{Message: &msg}
}
