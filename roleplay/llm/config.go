package llm

import (
	"fmt"
	"strings"
	"time"

	openrouterx "github.com/rudra2807/AgentCoach-AI/pkg/openrouter"
	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

// Config carries the shared model settings plus per-collaborator overrides.
// The router and analyzers run cold (classification work); the generator
// runs warmer so the simulated customer does not sound scripted.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel          string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	GeneratorModel       string  `envconfig:"GENERATOR_MODEL" split_words:"true"`
	AnalyzerModel        string  `envconfig:"ANALYZER_MODEL" split_words:"true"`
	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"0.1"`
	GeneratorTemperature float32 `envconfig:"GENERATOR_TEMPERATURE" split_words:"true" default:"0.55"`
	AnalyzerTemperature  float32 `envconfig:"ANALYZER_TEMPERATURE" split_words:"true" default:"0.2"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for one collaborator type.
func (c Config) OpenRouterFor(collab contractx.CollaboratorType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	var temp float32

	switch collab {
	case contractx.CollaboratorRouter:
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		temp = c.RouterTemperature
	case contractx.CollaboratorGenerator:
		if v := strings.TrimSpace(c.GeneratorModel); v != "" {
			modelName = v
		}
		temp = c.GeneratorTemperature
	case contractx.CollaboratorTurnAnalyzer, contractx.CollaboratorSessionAnalyzer:
		if v := strings.TrimSpace(c.AnalyzerModel); v != "" {
			modelName = v
		}
		temp = c.AnalyzerTemperature
	default:
		temp = c.AnalyzerTemperature
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
