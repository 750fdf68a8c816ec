// Package answer phrases query results as a natural-language reply.
package answer

import (
	"context"
	"cypher_chat/src/llm"
	"cypher_chat/src/logger"
	"cypher_chat/src/model"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

type Synthesizer struct {
	chain         compose.Runnable[map[string]any, *schema.Message]
	unknownAnswer string
}

func NewSynthesizer(ctx context.Context, chatModel einomodel.BaseChatModel, config model.AnswerConfig) (*Synthesizer, error) {
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(createAnswerTemplate()).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating answer chain: %w", err)
	}

	unknown := strings.TrimSpace(config.UnknownAnswer)
	if unknown == "" {
		unknown = DefaultUnknownAnswer
	}

	return &Synthesizer{chain: chain, unknownAnswer: unknown}, nil
}

// Synthesize answers question from resultText. An empty result never reaches
// the model; the configured unknown answer is returned instead.
func (s *Synthesizer) Synthesize(ctx context.Context, question, resultText string) (string, error) {
	log := logger.Component("synthesizer")

	if IsEmptyResult(resultText) {
		log.Debug().Msg("Empty result set, answering unknown")
		return s.unknownAnswer, nil
	}

	start := time.Now()
	out, err := s.chain.Invoke(ctx, map[string]any{
		VarContext:  resultText,
		VarQuestion: question,
	})
	if err != nil {
		return "", fmt.Errorf("error generating answer: %w", llm.Cause(err))
	}

	answer := strings.TrimSpace(out.Content)
	if answer == "" {
		answer = s.unknownAnswer
	}

	log.Debug().
		Int("context_length", len(resultText)).
		Int("answer_length", len(answer)).
		Dur("elapsed", time.Since(start)).
		Msg("Answer generated")

	return answer, nil
}

// IsEmptyResult reports whether a rendered result set carries no rows
func IsEmptyResult(resultText string) bool {
	switch strings.TrimSpace(resultText) {
	case "", "[]", "null", "{}":
		return true
	}
	return false
}
