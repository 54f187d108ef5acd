package contract

import (
	"encoding/json"
	"strings"
)

// Bounds for numeric fields crossing the collaborator boundary. Values
// outside these ranges are clamped on receipt, never trusted verbatim.
const (
	MinProgressDelta = -20
	MaxProgressDelta = 40

	MinConfidence = 0.3
	MaxConfidence = 0.95

	DefaultScore      = 0.5
	DefaultConfidence = 0.7
)

func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func ClampFloat(n, lo, hi float64) float64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// DefaultVerdict is the neutral verdict used when the router fails: the
// turn still completes, the stage does not move.
func DefaultVerdict() RouterVerdict {
	return RouterVerdict{
		AgentLabel:     LabelNeutral,
		ProgressSignal: ProgressStay,
	}
}

// Normalize clamps the verdict into its documented ranges and collapses
// unknown enum values to their defaults.
func (v *RouterVerdict) Normalize() {
	switch v.AgentLabel {
	case LabelAcknowledged, LabelGoodDiscovery, LabelNeutral, LabelUnclear, LabelPushy, LabelPushedListings:
	default:
		v.AgentLabel = LabelNeutral
	}

	switch v.ProgressSignal {
	case ProgressStay, ProgressAdvance, ProgressEscalate:
	default:
		v.ProgressSignal = ProgressStay
	}

	v.Trigger = strings.TrimSpace(v.Trigger)
	v.Delta = ClampInt(v.Delta, MinProgressDelta, MaxProgressDelta)

	switch v.Signals.ResearchMode {
	case ResearchOnlineBrowsing, ResearchAgentLed, ResearchOpenHouses, ResearchUnknown:
	case "":
	default:
		v.Signals.ResearchMode = ResearchUnknown
	}
	if v.Signals.Confidence != nil {
		c := ClampFloat(*v.Signals.Confidence, MinConfidence, MaxConfidence)
		v.Signals.Confidence = &c
	}
}

// UnmarshalJSON seeds the three scores with DefaultScore so a reply that
// omits them decodes to the documented 0.5 default instead of 0. An
// explicit zero in the payload is kept.
func (a *TurnAnalysis) UnmarshalJSON(data []byte) error {
	type plain TurnAnalysis
	tmp := plain{
		PushinessScore: DefaultScore,
		ClarityScore:   DefaultScore,
		DiscoveryScore: DefaultScore,
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*a = TurnAnalysis(tmp)
	return nil
}

// Normalize applies defaults and clamps to a turn analysis.
// Scores land in [0,1]; a missing or out-of-band alignment becomes
// "acceptable".
func (a *TurnAnalysis) Normalize() {
	switch a.StageAlignment {
	case AlignmentStrong, AlignmentAcceptable, AlignmentWeak:
	default:
		a.StageAlignment = AlignmentAcceptable
	}

	a.PushinessScore = ClampFloat(a.PushinessScore, 0, 1)
	a.ClarityScore = ClampFloat(a.ClarityScore, 0, 1)
	a.DiscoveryScore = ClampFloat(a.DiscoveryScore, 0, 1)

	if a.Confidence == 0 {
		a.Confidence = DefaultConfidence
	}
	a.Confidence = ClampFloat(a.Confidence, MinConfidence, MaxConfidence)

	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.MissedOpportunities == nil {
		a.MissedOpportunities = []string{}
	}
}

// Normalize fills every optional generator field the model may omit.
// StageID falls back to the requested stage supplied by the caller.
func (g *GeneratedUtterance) Normalize(requestedStage int, requestedTags []string) {
	if g.StageID == 0 {
		g.StageID = requestedStage
	}
	if g.Tags == nil {
		g.Tags = append([]string(nil), requestedTags...)
	}
	if g.FactsUsed == nil {
		g.FactsUsed = []string{}
	}
	if g.Consistency != ConsistencyOK && g.Consistency != ConsistencyRisk {
		g.Consistency = ConsistencyOK
	}
	g.Intent = strings.TrimSpace(g.Intent)
}

func (s *SessionSynthesis) Normalize() {
	if s.Strengths == nil {
		s.Strengths = []string{}
	}
	if s.KeyMistakes == nil {
		s.KeyMistakes = []string{}
	}
	if s.MissedOpportunities == nil {
		s.MissedOpportunities = []string{}
	}
	if s.Confidence == 0 {
		s.Confidence = DefaultConfidence
	}
	s.Confidence = ClampFloat(s.Confidence, MinConfidence, MaxConfidence)
}
