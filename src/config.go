package src

import (
	"cypher_chat/src/model"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:""`
	LLMConfig          model.LLMConfig          `envconfig:""`
	GraphConfig        model.GraphConfig        `envconfig:""`
	ConversationConfig model.ConversationConfig `envconfig:""`
	ServerConfig       model.ServerConfig       `envconfig:""`
}

// LoadConfig reads the optional env files and then the process environment.
// Values already present in the environment win over the files.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			// a missing .env is normal outside local development
			continue
		}
	}

	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.GraphConfig.TopK <= 0 {
		return fmt.Errorf("GRAPH_TOP_K must be positive, got %d", c.GraphConfig.TopK)
	}
	switch c.GraphConfig.SchemaSource {
	case "static", "introspect":
	default:
		return fmt.Errorf("unknown GRAPH_SCHEMA_SOURCE %q (want static or introspect)", c.GraphConfig.SchemaSource)
	}
	switch c.ConversationConfig.Store {
	case "memory":
	case "redis":
		if c.ConversationConfig.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CONVERSATION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown CONVERSATION_STORE %q (want memory or redis)", c.ConversationConfig.Store)
	}
	return nil
}
