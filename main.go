package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configx "github.com/rudra2807/AgentCoach-AI/pkg/config"
	logx "github.com/rudra2807/AgentCoach-AI/pkg/logger"
	_ "github.com/rudra2807/AgentCoach-AI/pkg/logger/autoload"
	"github.com/rudra2807/AgentCoach-AI/roleplay/collab"
	llmx "github.com/rudra2807/AgentCoach-AI/roleplay/llm"
	scriptx "github.com/rudra2807/AgentCoach-AI/roleplay/script"
	sessionx "github.com/rudra2807/AgentCoach-AI/roleplay/session"
	simulatorx "github.com/rudra2807/AgentCoach-AI/roleplay/simulator"
	serverx "github.com/rudra2807/AgentCoach-AI/server"
)

type AppConfig struct {
	Addr           string `envconfig:"ADDR" split_words:"true" default:":8080"`
	ScriptPath     string `envconfig:"SCRIPT_PATH" split_words:"true" default:"configs/buyer_discovery.json"`
	Mode           string `envconfig:"MODE" split_words:"true" default:"scripted"`
	SessionBackend string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
}

func main() {
	log := logx.Component("main")

	appCfg := configx.MustNew[AppConfig]("ROLEPLAY")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")

	ctx := context.Background()

	script, err := scriptx.Load(appCfg.ScriptPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.ScriptPath).Msg("load script")
	}

	store, closeStore, err := newSessionStore(ctx, appCfg.SessionBackend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.SessionBackend).Msg("init session store")
	}
	defer closeStore()

	models, err := collab.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build collaborator registry")
	}

	sim, err := simulatorx.New(store, models, script, simulatorx.Config{
		Mode: simulatorx.Mode(appCfg.Mode),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build simulator")
	}

	srv, err := serverx.New(sim)
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}

	httpServer := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", appCfg.Addr).
			Str("script", script.ScriptID).
			Str("mode", appCfg.Mode).
			Msg("roleplay server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("roleplay server stopped")
}

func newSessionStore(ctx context.Context, backend string) (sessionx.Store, func(), error) {
	switch backend {
	case "", "memory":
		return sessionx.NewMemoryStore(), func() {}, nil
	case "redis":
		cfg := configx.MustNew[sessionx.UpstashRedisConfig]("UPSTASH")
		store, err := sessionx.NewUpstashRedisStore(*cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		cfg := configx.MustNew[sessionx.PostgresConfig]("POSTGRES")
		store, err := sessionx.NewPostgresStore(*cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
