package config

import (
	"cypher_chat/src/model"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// YAMLConfig represents the structure of config.yaml
type YAMLConfig struct {
	Schema     string                 `yaml:"schema"`
	Translator model.TranslatorConfig `yaml:"translator"`
	Answer     model.AnswerConfig     `yaml:"answer"`
}

// LoadConfig loads configuration from a YAML file. Sections missing from the
// file keep the built-in defaults.
func LoadConfig(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return parse(data)
}

// LoadOrDefault behaves like LoadConfig but falls back to the built-in
// configuration when the file does not exist.
func LoadOrDefault(filepath string) (*YAMLConfig, error) {
	cfg, err := LoadConfig(filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return cfg, err
}

// Default returns the built-in schema and prompt configuration
func Default() (*YAMLConfig, error) {
	var config YAMLConfig
	if err := yaml.Unmarshal(defaultYAML, &config); err != nil {
		return nil, fmt.Errorf("error parsing built-in config: %w", err)
	}
	return &config, nil
}

func parse(data []byte) (*YAMLConfig, error) {
	config, err := Default()
	if err != nil {
		return nil, err
	}

	var override YAMLConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	if strings.TrimSpace(override.Schema) != "" {
		config.Schema = override.Schema
	}
	if override.Translator.Neo4jVersion > 0 {
		config.Translator.Neo4jVersion = override.Translator.Neo4jVersion
	}
	if len(override.Translator.ForbiddenKeywords) > 0 {
		config.Translator.ForbiddenKeywords = override.Translator.ForbiddenKeywords
	}
	if override.Translator.Examples != nil {
		config.Translator.Examples = override.Translator.Examples
	}
	if override.Answer.UnknownAnswer != "" {
		config.Answer.UnknownAnswer = override.Answer.UnknownAnswer
	}

	return config, nil
}
