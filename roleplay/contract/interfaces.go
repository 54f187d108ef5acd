package contract

import "context"

type Router interface {
	Route(ctx context.Context, req RouterRequest) (RouterVerdict, error)
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GeneratedUtterance, error)
}

type TurnAnalyzer interface {
	AnalyzeTurn(ctx context.Context, req TurnAnalysisRequest) (TurnAnalysis, error)
}

type SessionAnalyzer interface {
	Synthesize(ctx context.Context, req SessionSynthesisRequest) (SessionSynthesis, error)
}

type Registry interface {
	Router() Router
	Generator() Generator
	TurnAnalyzer() TurnAnalyzer
	SessionAnalyzer() SessionAnalyzer
}
