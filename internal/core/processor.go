package core

import (
	"context"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"cypher_chat/src/llm"
	"cypher_chat/src/logger"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
)

// Orchestrator runs one question through translate, execute and synthesize
// and records the outcome in the session history. Failures never escape a
// turn: they become the recorded answer.
type Orchestrator struct {
	deps   Dependencies
	config Config
	chain  compose.Runnable[*turnState, *turnState]

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(ctx context.Context, deps Dependencies, config Config) (*Orchestrator, error) {
	if deps.Translator == nil || deps.Executor == nil || deps.Synthesizer == nil || deps.Schema == nil || deps.Store == nil {
		return nil, fmt.Errorf("orchestrator dependencies cannot be nil")
	}

	o := &Orchestrator{
		deps:     deps,
		config:   config,
		inFlight: make(map[string]struct{}),
	}

	chain, err := compose.NewChain[*turnState, *turnState]().
		AppendLambda(compose.InvokableLambda(o.translate)).
		AppendLambda(compose.InvokableLambda(o.execute)).
		AppendLambda(compose.InvokableLambda(o.synthesize)).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating pipeline chain: %w", err)
	}
	o.chain = chain

	return o, nil
}

// Ask processes question for the session and appends the question together
// with its answer, or with a failure placeholder, to the history.
func (o *Orchestrator) Ask(ctx context.Context, sessionID, question string) (*pkg.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if !o.acquire(sessionID) {
		return nil, ErrTurnInProgress
	}
	defer o.release(sessionID)

	log := logger.Component("orchestrator")
	start := time.Now()

	state := &turnState{
		Question:   question,
		SchemaText: o.deps.Schema.Schema(),
	}
	_, err := o.chain.Invoke(ctx, state)
	elapsed := time.Since(start)

	turn := &pkg.Turn{
		SessionID:  sessionID,
		Question:   question,
		Query:      state.Query,
		ResultText: state.ResultText,
		Elapsed:    elapsed,
		ElapsedMs:  elapsed.Milliseconds(),
		Timestamp:  start,
	}

	if err != nil {
		var stageErr *StageError
		if state.err != nil {
			stageErr = state.err
		} else if !errors.As(err, &stageErr) {
			stageErr = &StageError{Err: llm.Cause(err)}
		}
		turn.Failed = true
		turn.Stage = string(stageErr.Stage)
		turn.Answer = FailureAnswer(stageErr)

		log.Error().
			Err(stageErr.Err).
			Str("session_id", sessionID).
			Str("stage", turn.Stage).
			Dur("elapsed", elapsed).
			Msg("Turn failed")
	} else {
		turn.Answer = state.Answer
		log.Info().
			Str("session_id", sessionID).
			Int("rows", rowCount(state)).
			Dur("elapsed", elapsed).
			Msg("Turn completed")
	}

	if err := o.deps.Store.RecordTurn(ctx, turn); err != nil {
		return turn, fmt.Errorf("failed to record turn: %w", err)
	}
	return turn, nil
}

// History returns the session's questions and answers in submission order
func (o *Orchestrator) History(ctx context.Context, sessionID string) (*conversation.History, error) {
	return o.deps.Store.History(ctx, sessionID)
}

// Reset forgets the session's history
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	return o.deps.Store.Reset(ctx, sessionID)
}

// Transcript returns the session's archived turns
func (o *Orchestrator) Transcript(ctx context.Context, sessionID string) ([]pkg.TranscriptEntry, error) {
	return o.deps.Store.Transcript(ctx, sessionID)
}

// FailureAnswer is the text recorded as the answer of a failed turn
func FailureAnswer(err error) string {
	return FailurePrefix + err.Error()
}

func (o *Orchestrator) translate(ctx context.Context, state *turnState) (*turnState, error) {
	query, err := o.deps.Translator.Translate(ctx, state.SchemaText, state.Question)
	if err != nil {
		return nil, state.fail(StageTranslate, err)
	}
	state.Query = query
	return state, nil
}

func (o *Orchestrator) execute(ctx context.Context, state *turnState) (*turnState, error) {
	rs, err := o.deps.Executor.Execute(ctx, state.Query)
	if err != nil {
		return nil, state.fail(StageExecute, err)
	}
	text, err := rs.Text(o.config.TopK)
	if err != nil {
		return nil, state.fail(StageExecute, err)
	}
	state.Result = rs
	state.ResultText = text
	return state, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, state *turnState) (*turnState, error) {
	answer, err := o.deps.Synthesizer.Synthesize(ctx, state.Question, state.ResultText)
	if err != nil {
		return nil, state.fail(StageSynthesize, err)
	}
	state.Answer = answer
	return state, nil
}

func (s *turnState) fail(stage Stage, err error) error {
	s.err = &StageError{Stage: stage, Err: err}
	return s.err
}

func (o *Orchestrator) acquire(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inFlight[sessionID]; busy {
		return false
	}
	o.inFlight[sessionID] = struct{}{}
	return true
}

func (o *Orchestrator) release(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.inFlight, sessionID)
}

func rowCount(state *turnState) int {
	if state.Result.IsEmpty() {
		return 0
	}
	return len(state.Result.Rows)
}
