package core

import (
	"context"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"cypher_chat/src/graphdb"
	"errors"
)

var (
	ErrEmptyQuestion  = errors.New("question must not be empty")
	ErrTurnInProgress = errors.New("a question is already being processed for this session")
)

// FailurePrefix starts every answer recorded for a failed turn
const FailurePrefix = "Error processing the request: "

// QueryTranslator turns a question into a Cypher query
type QueryTranslator interface {
	Translate(ctx context.Context, schemaText, question string) (string, error)
}

// QueryExecutor runs a query against the graph database
type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*graphdb.ResultSet, error)
}

// AnswerSynthesizer phrases database results as an answer
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, question, resultText string) (string, error)
}

// SchemaProvider supplies the schema text handed to the translator
type SchemaProvider interface {
	Schema() string
}

// HistoryStore records completed turns per session
type HistoryStore interface {
	RecordTurn(ctx context.Context, turn *pkg.Turn) error
	History(ctx context.Context, sessionID string) (*conversation.History, error)
	Reset(ctx context.Context, sessionID string) error
	Transcript(ctx context.Context, sessionID string) ([]pkg.TranscriptEntry, error)
}

// Stage names one step of the question pipeline
type Stage string

const (
	StageTranslate  Stage = "translate"
	StageExecute    Stage = "execute"
	StageSynthesize Stage = "synthesize"
)

// StageError tags a pipeline failure with the step that produced it. The
// message is the underlying error's, so answers do not reveal the stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Dependencies are the collaborators of an Orchestrator
type Dependencies struct {
	Translator  QueryTranslator
	Executor    QueryExecutor
	Synthesizer AnswerSynthesizer
	Schema      SchemaProvider
	Store       HistoryStore
}

// Config holds orchestrator options
type Config struct {
	// TopK caps the rows passed to the synthesizer and shown as result text
	TopK int
}

// turnState flows through the pipeline chain
type turnState struct {
	Question   string
	SchemaText string
	Query      string
	Result     *graphdb.ResultSet
	ResultText string
	Answer     string
	err        *StageError
}
