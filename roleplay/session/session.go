package session

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

// Signals is the accumulated factual and anti-loop memory extracted from the
// conversation. Nullable numerics stay pointers so "never mentioned" is
// distinguishable from zero.
type Signals struct {
	TimelineMonths *int     `json:"timeline_months,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
	Needs          []string `json:"needs,omitempty"`
	Objections     []string `json:"objections,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`

	ResearchMode      contractx.ResearchMode `json:"research_mode,omitempty"`
	ValueFrameTrigger bool                   `json:"value_frame_trigger,omitempty"`

	// Anti-loop memory: which intents the simulated customer has already
	// surfaced, the last one, and how often each was re-asked back to back.
	AskedIntents       []string       `json:"asked_intents"`
	LastCustomerIntent string         `json:"last_customer_intent,omitempty"`
	ReaskCountByIntent map[string]int `json:"reask_count_by_intent"`
}

// TurnRecord is one per-turn coaching judgment, kept in order for the
// deterministic session aggregation.
type TurnRecord struct {
	StageID      int                    `json:"stage_id"`
	AgentMessage string                 `json:"agent_message"`
	Analysis     contractx.TurnAnalysis `json:"analysis"`
}

// Session is the mutable record of one roleplay. It is mutated only by the
// single turn-handler actively processing it; callers serialize overlapping
// turns against the same id.
type Session struct {
	SessionID     string `json:"session_id"`
	ScriptID      string `json:"script_id"`
	ScriptVersion int    `json:"script_version"`

	StageID int `json:"stage_id"`

	StageUtterancesUsedCount map[int]int      `json:"stage_utterances_used_count"`
	StageProgressScore       map[int]int      `json:"stage_progress_score"`
	StageTagMemory           map[int][]string `json:"stage_tag_memory"`

	UsedUtteranceIDs  map[string]bool   `json:"used_utterance_ids"`
	VariantSelections map[string]string `json:"variant_selections"`

	Signals Signals `json:"signals"`

	Messages     []contractx.ChatMessage `json:"messages"`
	TurnAnalyses []TurnRecord            `json:"turn_analyses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New allocates a fresh session with zeroed memory, fixed at startStage.
func New(scriptID string, scriptVersion int, startStage int, now time.Time) *Session {
	return &Session{
		SessionID:     uuid.NewString(),
		ScriptID:      scriptID,
		ScriptVersion: scriptVersion,
		StageID:       startStage,

		StageUtterancesUsedCount: make(map[int]int),
		StageProgressScore:       make(map[int]int),
		StageTagMemory:           make(map[int][]string),

		UsedUtteranceIDs:  make(map[string]bool),
		VariantSelections: make(map[string]string),

		Signals: Signals{
			AskedIntents:       []string{},
			ReaskCountByIntent: make(map[string]int),
		},

		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureStageMemory lazily initializes per-stage counters on first visit.
// It never bumps the utterance counter; counters move only when a line is
// actually emitted.
func (s *Session) EnsureStageMemory(stageID int) {
	if s.StageUtterancesUsedCount == nil {
		s.StageUtterancesUsedCount = make(map[int]int)
	}
	if s.StageProgressScore == nil {
		s.StageProgressScore = make(map[int]int)
	}
	if s.StageTagMemory == nil {
		s.StageTagMemory = make(map[int][]string)
	}
	if _, ok := s.StageUtterancesUsedCount[stageID]; !ok {
		s.StageUtterancesUsedCount[stageID] = 0
	}
	if _, ok := s.StageProgressScore[stageID]; !ok {
		s.StageProgressScore[stageID] = 0
	}
	if _, ok := s.StageTagMemory[stageID]; !ok {
		s.StageTagMemory[stageID] = []string{}
	}
}

// UtteranceUsed reports whether a scripted line was already consumed.
func (s *Session) UtteranceUsed(id string) bool {
	return s.UsedUtteranceIDs[id]
}

// MarkUtteranceUsed adds the id to the monotonically growing used set.
func (s *Session) MarkUtteranceUsed(id string) {
	if s.UsedUtteranceIDs == nil {
		s.UsedUtteranceIDs = make(map[string]bool)
	}
	s.UsedUtteranceIDs[id] = true
}

// LockVariant records the first variant key chosen for a group. A later
// call for the same group is a no-op: the choice is sticky for the session.
func (s *Session) LockVariant(group, key string) {
	if group == "" || key == "" {
		return
	}
	if s.VariantSelections == nil {
		s.VariantSelections = make(map[string]string)
	}
	if _, chosen := s.VariantSelections[group]; !chosen {
		s.VariantSelections[group] = key
	}
}

// BumpUtteranceCount increments the per-stage utterance counter.
func (s *Session) BumpUtteranceCount(stageID int) {
	if s.StageUtterancesUsedCount == nil {
		s.StageUtterancesUsedCount = make(map[int]int)
	}
	s.StageUtterancesUsedCount[stageID]++
}

// AppendMessage appends to the ordered transcript.
func (s *Session) AppendMessage(msg contractx.ChatMessage) {
	s.Messages = append(s.Messages, msg)
}

// LastTextBy returns the most recent message text for a speaker role.
func (s *Session) LastTextBy(role contractx.SpeakerRole) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == role {
			return s.Messages[i].Text
		}
	}
	return ""
}

// RecentMessages returns up to n of the latest transcript entries.
func (s *Session) RecentMessages(n int) []contractx.ChatMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// RecordIntent folds a generated utterance's intent label into the
// anti-loop memory: the asked set grows idempotently, and the re-ask
// counter for an intent increments only when it repeats back to back.
func (s *Session) RecordIntent(intent string) {
	if intent == "" {
		return
	}
	if s.Signals.ReaskCountByIntent == nil {
		s.Signals.ReaskCountByIntent = make(map[string]int)
	}
	if !slices.Contains(s.Signals.AskedIntents, intent) {
		s.Signals.AskedIntents = append(s.Signals.AskedIntents, intent)
	}
	if intent == s.Signals.LastCustomerIntent {
		s.Signals.ReaskCountByIntent[intent]++
		return
	}
	s.Signals.ReaskCountByIntent[intent] = 0
	s.Signals.LastCustomerIntent = intent
}

// MergeSignals folds a router verdict's extracted signals into session
// memory. Scalars overwrite only when present; needs/objections are
// set-unioned preserving first-seen order.
func (s *Session) MergeSignals(ex contractx.ExtractedSignals) {
	if ex.TimelineMonths != nil {
		s.Signals.TimelineMonths = ex.TimelineMonths
	}
	if ex.Budget != nil {
		s.Signals.Budget = ex.Budget
	}
	s.Signals.Needs = unionStrings(s.Signals.Needs, ex.Needs)
	s.Signals.Objections = unionStrings(s.Signals.Objections, ex.Objections)
	if ex.ResearchMode != "" {
		s.Signals.ResearchMode = ex.ResearchMode
	}
	if ex.ValueFrameTrigger != nil {
		s.Signals.ValueFrameTrigger = *ex.ValueFrameTrigger
	}
	if ex.Confidence != nil {
		s.Signals.Confidence = ex.Confidence
	}
}

// SignalsMap renders the signals as a generic map for collaborator prompts.
func (s *Session) SignalsMap() map[string]any {
	raw, err := json.Marshal(s.Signals)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func unionStrings(base, extra []string) []string {
	for _, v := range extra {
		if v == "" || slices.Contains(base, v) {
			continue
		}
		base = append(base, v)
	}
	return base
}
