package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/generator.txt
	generatorRaw string

	//go:embed template/turn_analyzer.txt
	turnAnalyzerRaw string

	//go:embed template/session_analyzer.txt
	sessionAnalyzerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router          string
	Generator       string
	TurnAnalyzer    string
	SessionAnalyzer string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:          strings.TrimSpace(routerRaw),
		Generator:       strings.TrimSpace(generatorRaw),
		TurnAnalyzer:    strings.TrimSpace(turnAnalyzerRaw),
		SessionAnalyzer: strings.TrimSpace(sessionAnalyzerRaw),
	}
}
