package model

import "time"

// ----------------------------------------------------
// ================ Environment config ================

// LogConfig controls the global zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stderr"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/cypher_chat.log"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
}

// LLMConfig selects and configures the chat model used for both prompts
type LLMConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"openai"`
	APIKey      string        `envconfig:"LLM_API_KEY"`
	BaseURL     string        `envconfig:"LLM_BASE_URL"`
	Model       string        `envconfig:"LLM_MODEL" default:"gpt-3.5-turbo"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"1024"`
	Temperature float32       `envconfig:"LLM_TEMPERATURE" default:"0"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

// GraphConfig holds the Neo4j endpoint and result shaping options
type GraphConfig struct {
	URI          string `envconfig:"NEO4J_URI" default:"neo4j://localhost:7687"`
	Username     string `envconfig:"NEO4J_USERNAME" default:"neo4j"`
	Password     string `envconfig:"NEO4J_PASSWORD"`
	Database     string `envconfig:"NEO4J_DATABASE"`
	TopK         int    `envconfig:"GRAPH_TOP_K" default:"10"`
	SchemaSource string `envconfig:"GRAPH_SCHEMA_SOURCE" default:"static"`
}

// ConversationConfig selects where session histories live
type ConversationConfig struct {
	Store         string        `envconfig:"CONVERSATION_STORE" default:"memory"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	TTL           time.Duration `envconfig:"CONVERSATION_TTL" default:"40m"`
	TranscriptDir string        `envconfig:"TRANSCRIPT_DIR"`
}

// ServerConfig configures the web front-end
type ServerConfig struct {
	ListenAddr string `envconfig:"SERVER_LISTEN_ADDR" default:":8080"`
	Title      string `envconfig:"SERVER_TITLE" default:"Conversational Neo4J Assistant"`
}

// ----------------------------------------------------
// ================ Prompt config (config.yaml) ================

// CypherExample is one few-shot question/query pair for the translator
type CypherExample struct {
	Question string `yaml:"question"`
	Cypher   string `yaml:"cypher"`
}

// TranslatorConfig tunes the Cypher generation prompt
type TranslatorConfig struct {
	Neo4jVersion      int             `yaml:"neo4j_version"`
	ForbiddenKeywords []string        `yaml:"forbidden_keywords"`
	Examples          []CypherExample `yaml:"examples"`
}

// AnswerConfig tunes the answer synthesis step
type AnswerConfig struct {
	UnknownAnswer string `yaml:"unknown_answer"`
}
