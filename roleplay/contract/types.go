package contract

import "time"

type CollaboratorType string

const (
	CollaboratorRouter          CollaboratorType = "router"
	CollaboratorGenerator       CollaboratorType = "generator"
	CollaboratorTurnAnalyzer    CollaboratorType = "turn_analyzer"
	CollaboratorSessionAnalyzer CollaboratorType = "session_analyzer"
)

type SpeakerRole string

const (
	SpeakerCustomer SpeakerRole = "Customer"
	SpeakerAgent    SpeakerRole = "Agent"
	SpeakerSystem   SpeakerRole = "System"
)

// ChatMessage is one turn of the roleplay transcript. Meta carries the
// utterance id / tags / facts for scripted lines and the intent label for
// generated ones.
type ChatMessage struct {
	Role SpeakerRole    `json:"role"`
	Text string         `json:"text"`
	TS   time.Time      `json:"ts"`
	Meta map[string]any `json:"meta,omitempty"`
}

type ProgressSignal string

const (
	ProgressStay     ProgressSignal = "stay"
	ProgressAdvance  ProgressSignal = "advance"
	ProgressEscalate ProgressSignal = "escalate"
)

type AgentLabel string

const (
	LabelAcknowledged   AgentLabel = "acknowledged"
	LabelGoodDiscovery  AgentLabel = "good_discovery"
	LabelNeutral        AgentLabel = "neutral"
	LabelUnclear        AgentLabel = "unclear"
	LabelPushy          AgentLabel = "pushy"
	LabelPushedListings AgentLabel = "pushed_listings"
)

type ResearchMode string

const (
	ResearchOnlineBrowsing ResearchMode = "online_browsing"
	ResearchAgentLed       ResearchMode = "agent_led"
	ResearchOpenHouses     ResearchMode = "open_houses"
	ResearchUnknown        ResearchMode = "unknown"
)

// ExtractedSignals are the facts the router pulled out of the recent
// conversation. Nullable numerics stay pointers so "not mentioned" is
// distinguishable from zero.
type ExtractedSignals struct {
	TimelineMonths    *int         `json:"timeline_months"`
	Budget            *float64     `json:"budget"`
	Needs             []string     `json:"needs"`
	Objections        []string     `json:"objections"`
	ResearchMode      ResearchMode `json:"research_mode,omitempty"`
	ValueFrameTrigger *bool        `json:"value_frame_trigger,omitempty"`
	Confidence        *float64     `json:"confidence"`
}

// UtteranceHint is a compact view of an unused scripted line, given to the
// router so it can see the remaining moves without the whole script.
type UtteranceHint struct {
	ID      string   `json:"id"`
	StageID int      `json:"stage_id"`
	Tags    []string `json:"tags,omitempty"`
	Text    string   `json:"text"`
}

type RouterRequest struct {
	StageID  int             `json:"stage_id"`
	Messages []ChatMessage   `json:"messages"`
	Hints    []UtteranceHint `json:"remaining_utterance_hints,omitempty"`
}

// RouterVerdict is the router's structured classification of the latest
// agent reply. Delta and confidence are clamped on receipt; Normalize
// enforces the closed enums.
type RouterVerdict struct {
	AgentLabel     AgentLabel       `json:"agent_label"`
	Trigger        string           `json:"trigger,omitempty"`
	ProgressSignal ProgressSignal   `json:"progress_signal"`
	Delta          int              `json:"stage_progress_delta"`
	Signals        ExtractedSignals `json:"extracted_signals"`
	Reason         string           `json:"reason"`
}

type ConsistencyFlag string

const (
	ConsistencyOK   ConsistencyFlag = "ok"
	ConsistencyRisk ConsistencyFlag = "risk"
)

type GenerateRequest struct {
	StageID     int            `json:"stage_id"`
	DesiredTags []string       `json:"tags,omitempty"`
	Messages    []ChatMessage  `json:"messages"`
	Signals     map[string]any `json:"signals,omitempty"`
	LastIntent  string         `json:"last_intent,omitempty"`
	ReaskCounts map[string]int `json:"reask_counts,omitempty"`
	First       bool           `json:"first_message,omitempty"`
}

type GeneratedUtterance struct {
	Text           string          `json:"text"`
	StageID        int             `json:"stage_id"`
	Tags           []string        `json:"tags"`
	Intent         string          `json:"intent"`
	RequiresAnswer bool            `json:"requires_answer"`
	FactsUsed      []string        `json:"facts_used"`
	Consistency    ConsistencyFlag `json:"consistency_check"`
}

type StageAlignment string

const (
	AlignmentStrong     StageAlignment = "strong"
	AlignmentAcceptable StageAlignment = "acceptable"
	AlignmentWeak       StageAlignment = "weak"
)

type TurnAnalysisRequest struct {
	StageID             int            `json:"stage_id"`
	LastCustomerMessage string         `json:"last_customer_message"`
	AgentMessage        string         `json:"agent_message"`
	Signals             map[string]any `json:"signals,omitempty"`
}

type TurnAnalysis struct {
	AnsweredCustomerQuestion bool           `json:"answered_customer_question"`
	AcknowledgedConcern      bool           `json:"acknowledged_concern"`
	StageAlignment           StageAlignment `json:"stage_alignment"`
	Strengths                []string       `json:"strengths"`
	MissedOpportunities      []string       `json:"missed_opportunities"`
	PushinessScore           float64        `json:"pushiness_score"`
	ClarityScore             float64        `json:"clarity_score"`
	DiscoveryScore           float64        `json:"discovery_score"`
	SuggestedImprovement     string         `json:"suggested_improvement"`
	Confidence               float64        `json:"confidence"`
}

type SessionSynthesisRequest struct {
	Transcript   string  `json:"transcript"`
	OverallScore int     `json:"overall_score"`
	ClarityAvg   float64 `json:"clarity_avg"`
	DiscoveryAvg float64 `json:"discovery_avg"`
	PushinessAvg float64 `json:"pushiness_avg"`
}

type SessionSynthesis struct {
	Strengths              []string `json:"strengths"`
	KeyMistakes            []string `json:"key_mistakes"`
	MissedOpportunities    []string `json:"missed_opportunities"`
	RiskMoment             string   `json:"risk_moment"`
	BestMoment             string   `json:"best_moment"`
	BiggestImprovementArea string   `json:"biggest_improvement_area"`
	CoachingSummary        string   `json:"coaching_summary"`
	Confidence             float64  `json:"confidence"`
}
