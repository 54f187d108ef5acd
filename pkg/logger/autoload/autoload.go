// Package autoload initializes the process logger from the environment as
// an import side effect.
package autoload

import (
	configx "github.com/rudra2807/AgentCoach-AI/pkg/config"
	logx "github.com/rudra2807/AgentCoach-AI/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
