package collab

import (
	"context"
	"fmt"

	openrouterx "github.com/rudra2807/AgentCoach-AI/pkg/openrouter"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
	llmx "github.com/rudra2807/AgentCoach-AI/roleplay/llm"
	promptx "github.com/rudra2807/AgentCoach-AI/roleplay/prompt"
)

type registryImpl struct {
	router          contractx.Router
	generator       contractx.Generator
	turnAnalyzer    contractx.TurnAnalyzer
	sessionAnalyzer contractx.SessionAnalyzer
}

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Generator() contractx.Generator {
	return r.generator
}

func (r *registryImpl) TurnAnalyzer() contractx.TurnAnalyzer {
	return r.turnAnalyzer
}

func (r *registryImpl) SessionAnalyzer() contractx.SessionAnalyzer {
	return r.sessionAnalyzer
}

// NewRegistry builds all four collaborators against the configured models.
// Router, generator, and turn analyzer run as compiled graphs; the session
// analyzer holds a raw client because synthesis happens outside the turn
// pipeline.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	routerModelCfg := cfg.OpenRouterFor(contractx.CollaboratorRouter)
	routerModel, err := routerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create router model: %v", contractx.ErrModelInvoke, err)
	}
	generatorModelCfg := cfg.OpenRouterFor(contractx.CollaboratorGenerator)
	generatorModel, err := generatorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create generator model: %v", contractx.ErrModelInvoke, err)
	}
	turnAnalyzerModelCfg := cfg.OpenRouterFor(contractx.CollaboratorTurnAnalyzer)
	turnAnalyzerModel, err := turnAnalyzerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create turn analyzer model: %v", contractx.ErrModelInvoke, err)
	}

	router, err := newRouter(ctx, routerModel, prompts.Router)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(ctx, generatorModel, prompts.Generator)
	if err != nil {
		return nil, err
	}
	turnAnalyzer, err := newTurnAnalyzer(ctx, turnAnalyzerModel, prompts.TurnAnalyzer)
	if err != nil {
		return nil, err
	}

	sessionModelCfg := cfg.OpenRouterFor(contractx.CollaboratorSessionAnalyzer)
	sessionAnalyzer, err := newSessionAnalyzer(
		openrouterx.NewClient(sessionModelCfg),
		sessionModelCfg.Model,
		prompts.SessionAnalyzer,
		sessionModelCfg.Temperature,
	)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		router:          router,
		generator:       generator,
		turnAnalyzer:    turnAnalyzer,
		sessionAnalyzer: sessionAnalyzer,
	}, nil
}
