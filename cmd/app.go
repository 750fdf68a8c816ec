package cmd

import (
	"context"
	"cypher_chat/internal/config"
	"cypher_chat/internal/core"
	"cypher_chat/internal/web"
	"cypher_chat/src"
	"cypher_chat/src/conversation"
	"cypher_chat/src/graphdb"
	"cypher_chat/src/llm"
	"cypher_chat/src/llm/answer"
	"cypher_chat/src/llm/cypher"
	"cypher_chat/src/logger"
	"fmt"
	"io"
)

// application holds everything a command needs, built in dependency order
type application struct {
	config   *src.Config
	prompts  *config.YAMLConfig
	executor *graphdb.Executor
	schema   core.SchemaProvider

	// set when conversations live in redis
	redis *conversation.RedisRepository

	closers []io.Closer
}

// loadApplication reads configuration, starts logging and resolves the schema.
// It does not contact the language model.
func loadApplication(ctx context.Context, explicitConfig bool) (*application, error) {
	cfg, err := src.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}

	logCloser, err := logger.InitLogger(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &application{
		config:   cfg,
		executor: graphdb.NewExecutor(cfg.GraphConfig),
		closers:  []io.Closer{logCloser},
	}

	if explicitConfig {
		app.prompts, err = config.LoadConfig(configPath)
	} else {
		app.prompts, err = config.LoadOrDefault(configPath)
	}
	if err != nil {
		app.Close()
		return nil, err
	}

	if err := app.resolveSchema(ctx); err != nil {
		app.Close()
		return nil, err
	}

	logger.Info().
		Str("neo4j_uri", cfg.GraphConfig.URI).
		Str("schema_source", cfg.GraphConfig.SchemaSource).
		Str("llm_provider", cfg.LLMConfig.Provider).
		Str("llm_model", cfg.LLMConfig.Model).
		Str("conversation_store", cfg.ConversationConfig.Store).
		Msg("Configuration loaded")

	return app, nil
}

func (a *application) resolveSchema(ctx context.Context) error {
	if a.config.GraphConfig.SchemaSource != "introspect" {
		a.schema = graphdb.StaticSchema(a.prompts.Schema)
		return nil
	}

	schema, err := a.executor.IntrospectSchema(ctx)
	if err != nil {
		return fmt.Errorf("failed to introspect graph schema: %w", err)
	}
	a.schema = schema
	return nil
}

// newOrchestrator wires the model-backed stages and the history store
func (a *application) newOrchestrator(ctx context.Context) (*core.Orchestrator, error) {
	chatModel, err := llm.NewChatModel(ctx, a.config.LLMConfig)
	if err != nil {
		return nil, err
	}

	translator, err := cypher.NewTranslator(ctx, chatModel, a.prompts.Translator)
	if err != nil {
		return nil, err
	}

	synthesizer, err := answer.NewSynthesizer(ctx, chatModel, a.prompts.Answer)
	if err != nil {
		return nil, err
	}

	repo, err := a.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	var archive *conversation.TranscriptArchive
	if dir := a.config.ConversationConfig.TranscriptDir; dir != "" {
		archive = conversation.NewTranscriptArchive(dir)
	}

	return core.NewOrchestrator(ctx, core.Dependencies{
		Translator:  translator,
		Executor:    a.executor,
		Synthesizer: synthesizer,
		Schema:      a.schema,
		Store:       conversation.NewService(repo, archive),
	}, core.Config{TopK: a.config.GraphConfig.TopK})
}

func (a *application) newRepository(ctx context.Context) (conversation.Repository, error) {
	cc := a.config.ConversationConfig
	if cc.Store != "redis" {
		return conversation.NewMemoryRepository(), nil
	}

	repo, err := conversation.NewRedisRepository(ctx, cc.RedisURL, cc.TTL)
	if err != nil {
		return nil, err
	}
	a.redis = repo
	a.closers = append(a.closers, repo)
	return repo, nil
}

// healthCheck pings the graph database and, when used, redis
func (a *application) healthCheck() web.HealthFunc {
	checks := []web.HealthFunc{a.executor.Ping}
	if a.redis != nil {
		checks = append(checks, a.redis.HealthCheck)
	}
	return web.CombineHealth(checks...)
}

// Close releases resources in reverse order of acquisition
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
