// Package cypher turns a natural-language question into a Cypher query with a chat model.
package cypher

import (
	"context"
	"cypher_chat/src/llm"
	"cypher_chat/src/logger"
	"cypher_chat/src/model"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Translator prompts the model with the graph schema and returns one query string
type Translator struct {
	config   model.TranslatorConfig
	template prompt.ChatTemplate
	chain    compose.Runnable[map[string]any, *schema.Message]
	examples string
}

// NewTranslator compiles the Template → ChatModel chain
func NewTranslator(ctx context.Context, chatModel einomodel.BaseChatModel, config model.TranslatorConfig) (*Translator, error) {
	template := createCypherTemplate(config)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating cypher chain: %w", err)
	}

	return &Translator{
		config:   config,
		template: template,
		chain:    chain,
		examples: FormatExamples(config.Examples),
	}, nil
}

// Translate returns the Cypher query the model proposes for question
func (t *Translator) Translate(ctx context.Context, schemaText, question string) (string, error) {
	log := logger.Component("translator")
	start := time.Now()

	out, err := t.chain.Invoke(ctx, t.variables(schemaText, question))
	if err != nil {
		return "", fmt.Errorf("error generating cypher: %w", llm.Cause(err))
	}

	query := ExtractQuery(out.Content)
	log.Debug().
		Int("question_length", len(question)).
		Str("query", query).
		Dur("elapsed", time.Since(start)).
		Msg("Cypher generated")

	return query, nil
}

// Messages renders the prompt without calling the model
func (t *Translator) Messages(ctx context.Context, schemaText, question string) ([]*schema.Message, error) {
	return t.template.Format(ctx, t.variables(schemaText, question))
}

func (t *Translator) variables(schemaText, question string) map[string]any {
	return map[string]any{
		VarSchema:   schemaText,
		VarExamples: t.examples,
		VarQuestion: question,
	}
}
