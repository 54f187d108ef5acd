package roleplaynode

import (
	"fmt"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	enginex "github.com/rudra2807/AgentCoach-AI/roleplay/engine"
)

// ApplyProgression folds the verdict into the session's stage state. The
// tags credited to the stage are those of the customer line the trainee
// was responding to. After progression, a session sitting on the final
// stage with its threshold met is complete.
func ApplyProgression(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	enginex.Advance(in.Session, in.Script, in.Verdict, lastCustomerTags(in))

	current := in.Session.StageID
	if _, hasNext := in.Script.NextStageID(current); !hasNext {
		stage := in.Script.StageByID(current)
		if stage != nil && in.Session.StageProgressScore[current] >= stage.Policy.ProgressThreshold {
			in.Done = true
		}
	}
	return in, nil
}

// lastCustomerTags pulls the tag list from the most recent customer
// message's metadata. Sessions loaded from a store carry meta through a
// JSON round trip, so both []string and []any shapes occur.
func lastCustomerTags(in *GraphState) []string {
	for i := len(in.Session.Messages) - 1; i >= 0; i-- {
		msg := in.Session.Messages[i]
		if msg.Role != contractx.SpeakerCustomer {
			continue
		}
		if msg.Meta == nil {
			return nil
		}
		switch tags := msg.Meta["tags"].(type) {
		case []string:
			return tags
		case []any:
			out := make([]string, 0, len(tags))
			for _, t := range tags {
				if s, ok := t.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}
	return nil
}
