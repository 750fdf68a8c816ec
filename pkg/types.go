package pkg

import (
	"time"
)

// Turn is the outcome of one question processed by the assistant
type Turn struct {
	SessionID  string        `json:"session_id"`
	Question   string        `json:"question"`
	Answer     string        `json:"answer"`
	Query      string        `json:"query"`       // last generated Cypher, empty if translation failed
	ResultText string        `json:"result_text"` // rendered database rows, empty if execution failed
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  int64         `json:"elapsed_ms"`
	Failed     bool          `json:"failed"`
	Stage      string        `json:"stage,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Exchange is a question paired with the answer that was recorded for it
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AskRequest is the JSON body of POST /api/ask
type AskRequest struct {
	Question string `json:"question"`
}

// HistoryResponse lists a session's exchanges newest first
type HistoryResponse struct {
	SessionID string     `json:"session_id"`
	Exchanges []Exchange `json:"exchanges"`
}

// TranscriptResponse lists a session's archived turns oldest first
type TranscriptResponse struct {
	SessionID string            `json:"session_id"`
	Entries   []TranscriptEntry `json:"entries"`
}

// ErrorResponse is returned by the JSON API on rejected requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranscriptEntry is one archived turn in a session transcript file
type TranscriptEntry struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Query     string    `json:"query,omitempty"`
	Failed    bool      `json:"failed"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// NewTranscriptEntry copies the archived fields of a turn
func NewTranscriptEntry(turn *Turn) TranscriptEntry {
	return TranscriptEntry{
		SessionID: turn.SessionID,
		Timestamp: turn.Timestamp,
		Question:  turn.Question,
		Answer:    turn.Answer,
		Query:     turn.Query,
		Failed:    turn.Failed,
		ElapsedMs: turn.ElapsedMs,
	}
}
