package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrScriptInvalid marks a structurally broken script definition. It is a
// configuration error: nothing is partially loaded and the repository must
// not be used.
var ErrScriptInvalid = errors.New("invalid roleplay script")

// Load reads and validates a script definition from disk.
func Load(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates a raw JSON script definition, applying policy defaults.
// Validation stops at the first structural violation.
func Parse(raw []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptInvalid, err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validate(s *Script) error {
	if len(s.Stages) == 0 {
		return fmt.Errorf("%w: missing stages", ErrScriptInvalid)
	}
	if len(s.Utterances) == 0 {
		return fmt.Errorf("%w: missing utterances", ErrScriptInvalid)
	}

	stageIDs := make(map[int]struct{}, len(s.Stages))
	lowest := 0
	for i := range s.Stages {
		st := &s.Stages[i]
		if st.StageID <= 0 {
			return fmt.Errorf("%w: stage %q has non-positive stage_id", ErrScriptInvalid, st.Name)
		}
		if _, dup := stageIDs[st.StageID]; dup {
			return fmt.Errorf("%w: duplicate stage_id %d", ErrScriptInvalid, st.StageID)
		}
		stageIDs[st.StageID] = struct{}{}
		if lowest == 0 || st.StageID < lowest {
			lowest = st.StageID
		}

		if st.Policy.ProgressThreshold == 0 {
			st.Policy.ProgressThreshold = DefaultProgressThreshold
		}
		switch st.Policy.NeededWhen {
		case NeededAlways, NeededWhenObjections, NeededWhenValueFrame:
		default:
			return fmt.Errorf("%w: stage %d has unknown needed_when %q", ErrScriptInvalid, st.StageID, st.Policy.NeededWhen)
		}
	}

	for i := range s.Stages {
		st := &s.Stages[i]
		if st.Policy.NextStage != nil && *st.Policy.NextStage != 0 {
			if _, ok := stageIDs[*st.Policy.NextStage]; !ok {
				return fmt.Errorf("%w: stage %d next_stage references unknown stage %d", ErrScriptInvalid, st.StageID, *st.Policy.NextStage)
			}
			// Stages only ever move forward; a backward next_stage would also
			// let the stage fallback chain cycle.
			if *st.Policy.NextStage <= st.StageID {
				return fmt.Errorf("%w: stage %d next_stage %d must be a higher stage", ErrScriptInvalid, st.StageID, *st.Policy.NextStage)
			}
		}
	}

	utteranceIDs := make(map[string]struct{}, len(s.Utterances))
	for i := range s.Utterances {
		u := &s.Utterances[i]
		if u.ID == "" {
			return fmt.Errorf("%w: utterance missing id", ErrScriptInvalid)
		}
		if _, dup := utteranceIDs[u.ID]; dup {
			return fmt.Errorf("%w: duplicate utterance id %q", ErrScriptInvalid, u.ID)
		}
		utteranceIDs[u.ID] = struct{}{}
		if _, ok := stageIDs[u.StageID]; !ok {
			return fmt.Errorf("%w: utterance %q references unknown stage_id %d", ErrScriptInvalid, u.ID, u.StageID)
		}
		if u.Text == "" {
			return fmt.Errorf("%w: utterance %q has empty text", ErrScriptInvalid, u.ID)
		}
		if (u.VariantGroup == "") != (u.VariantKey == "") {
			return fmt.Errorf("%w: utterance %q must set variant_group and variant_key together", ErrScriptInvalid, u.ID)
		}
	}

	// Requires may only point at known utterances.
	for i := range s.Utterances {
		u := &s.Utterances[i]
		for _, req := range u.Requires {
			if _, ok := utteranceIDs[req]; !ok {
				return fmt.Errorf("%w: utterance %q requires unknown utterance %q", ErrScriptInvalid, u.ID, req)
			}
		}
	}

	for _, t := range s.Transitions {
		if t.Trigger == "" {
			return fmt.Errorf("%w: transition %d->%d has empty trigger", ErrScriptInvalid, t.FromStage, t.ToStage)
		}
		if _, ok := stageIDs[t.FromStage]; !ok {
			return fmt.Errorf("%w: transition references unknown from_stage %d", ErrScriptInvalid, t.FromStage)
		}
		if _, ok := stageIDs[t.ToStage]; !ok {
			return fmt.Errorf("%w: transition references unknown to_stage %d", ErrScriptInvalid, t.ToStage)
		}
		if t.ToStage <= t.FromStage {
			return fmt.Errorf("%w: transition %d->%d must target a higher stage", ErrScriptInvalid, t.FromStage, t.ToStage)
		}
	}

	if s.StartStage == 0 {
		s.StartStage = lowest
	} else if _, ok := stageIDs[s.StartStage]; !ok {
		return fmt.Errorf("%w: start_stage references unknown stage %d", ErrScriptInvalid, s.StartStage)
	}

	return nil
}
