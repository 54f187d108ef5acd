package script

import "sort"

const (
	DefaultProgressThreshold = 80

	// maxUtterancesUnset caps stages that do not configure max_utterances;
	// in practice it means "never advance on count alone".
	maxUtterancesUnset = 999
)

// NeededWhen names the necessity predicate evaluated before stopping on an
// optional stage. An empty value means the stage is always needed.
type NeededWhen string

const (
	NeededAlways         NeededWhen = ""
	NeededWhenObjections NeededWhen = "objections_present"
	NeededWhenValueFrame NeededWhen = "value_frame"
)

// StagePolicy controls how a session moves off a stage.
type StagePolicy struct {
	MinUtterances     int        `json:"min_utterances,omitempty"`
	MaxUtterances     int        `json:"max_utterances,omitempty"`
	RequiredTags      []string   `json:"required_tags,omitempty"`
	NextStage         *int       `json:"next_stage,omitempty"` // nil = fall back to next-higher stage id
	Optional          bool       `json:"optional"`
	ProgressThreshold int        `json:"progress_threshold"`
	NeededWhen        NeededWhen `json:"needed_when,omitempty"`
}

type Stage struct {
	StageID int         `json:"stage_id"`
	Name    string      `json:"name"`
	Policy  StagePolicy `json:"policy"`
}

// Transition is a hard, score-independent jump taken when the router emits
// the matching trigger token.
type Transition struct {
	FromStage int    `json:"from_stage"`
	Trigger   string `json:"trigger"`
	ToStage   int    `json:"to_stage"`
	Note      string `json:"note,omitempty"`
}

type Utterance struct {
	ID      string `json:"id"`
	StageID int    `json:"stage_id"`
	Text    string `json:"text"`

	VariantGroup string `json:"variant_group,omitempty"`
	VariantKey   string `json:"variant_key,omitempty"`

	Requires []string `json:"requires,omitempty"`

	Tags  []string       `json:"tags,omitempty"`
	Facts map[string]any `json:"facts,omitempty"`
}

// Script is the immutable content definition for one roleplay flow. It is
// validated once at load time and never mutated afterwards.
type Script struct {
	ScriptID    string       `json:"script_id"`
	Version     int          `json:"version"`
	StartStage  int          `json:"start_stage,omitempty"`
	Stages      []Stage      `json:"stages"`
	Transitions []Transition `json:"transitions,omitempty"`
	Utterances  []Utterance  `json:"utterances"`
}

// StageByID returns the stage definition, or nil when the id is unknown.
func (s *Script) StageByID(stageID int) *Stage {
	for i := range s.Stages {
		if s.Stages[i].StageID == stageID {
			return &s.Stages[i]
		}
	}
	return nil
}

// NextStageID resolves the stage that follows stageID: the stage's
// next_stage policy if set (nil value = terminal), otherwise the
// next-higher stage id. The second return is false when the chain ends.
func (s *Script) NextStageID(stageID int) (int, bool) {
	if st := s.StageByID(stageID); st != nil {
		if st.Policy.NextStage != nil {
			next := *st.Policy.NextStage
			if next == 0 {
				return 0, false
			}
			return next, true
		}
	}

	ids := s.stageIDs()
	idx := sort.SearchInts(ids, stageID)
	if idx < len(ids) && ids[idx] == stageID && idx < len(ids)-1 {
		return ids[idx+1], true
	}
	return 0, false
}

// TransitionFor returns the hard transition out of fromStage for trigger,
// or nil when none is defined.
func (s *Script) TransitionFor(fromStage int, trigger string) *Transition {
	if trigger == "" {
		return nil
	}
	for i := range s.Transitions {
		t := &s.Transitions[i]
		if t.FromStage == fromStage && t.Trigger == trigger {
			return t
		}
	}
	return nil
}

// EffectiveMaxUtterances returns the stage's configured cap, defaulted when unset.
func (p StagePolicy) EffectiveMaxUtterances() int {
	if p.MaxUtterances <= 0 {
		return maxUtterancesUnset
	}
	return p.MaxUtterances
}

func (s *Script) stageIDs() []int {
	ids := make([]int, 0, len(s.Stages))
	for _, st := range s.Stages {
		ids = append(ids, st.StageID)
	}
	sort.Ints(ids)
	return ids
}
