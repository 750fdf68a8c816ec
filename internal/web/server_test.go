package web

import (
	"context"
	"cypher_chat/internal/core"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"cypher_chat/src/model"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	mu       sync.Mutex
	repo     *conversation.MemoryRepository
	archive  *conversation.TranscriptArchive
	askErr   error
	resetErr error
	lastSeen string
}

func newFakeAssistant() *fakeAssistant {
	return &fakeAssistant{repo: conversation.NewMemoryRepository()}
}

func (f *fakeAssistant) Ask(ctx context.Context, sessionID, question string) (*pkg.Turn, error) {
	f.mu.Lock()
	f.lastSeen = sessionID
	askErr := f.askErr
	f.mu.Unlock()

	if strings.TrimSpace(question) == "" {
		return nil, core.ErrEmptyQuestion
	}
	if askErr != nil {
		return nil, askErr
	}

	turn := &pkg.Turn{
		SessionID:  sessionID,
		Question:   question,
		Answer:     "Acme Logistics uses the most people.",
		Query:      "MATCH (c:CLIENT) RETURN c.name AS Client",
		ResultText: `[{"Client": "Acme Logistics"}]`,
		Elapsed:    1500 * time.Millisecond,
		ElapsedMs:  1500,
	}
	if err := f.repo.AppendTurn(ctx, sessionID, turn.Question, turn.Answer); err != nil {
		return nil, err
	}
	if f.archive != nil {
		if err := f.archive.Save(pkg.NewTranscriptEntry(turn)); err != nil {
			return nil, err
		}
	}
	return turn, nil
}

func (f *fakeAssistant) History(ctx context.Context, sessionID string) (*conversation.History, error) {
	return f.repo.Load(ctx, sessionID)
}

func (f *fakeAssistant) Reset(ctx context.Context, sessionID string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	return f.repo.Delete(ctx, sessionID)
}

func (f *fakeAssistant) Transcript(ctx context.Context, sessionID string) ([]pkg.TranscriptEntry, error) {
	if f.archive == nil {
		return nil, conversation.ErrTranscriptsDisabled
	}
	return f.archive.Load(sessionID)
}

func newTestServer(t *testing.T, assistant Assistant, health HealthFunc) *Server {
	t.Helper()
	s, err := NewServer(model.ServerConfig{ListenAddr: ":0", Title: "Conversational Neo4J Assistant"}, assistant, health)
	require.NoError(t, err)
	return s
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", sessionCookie)
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIndexIssuesSessionCookie(t *testing.T) {
	s := newTestServer(t, newFakeAssistant(), nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := sessionCookieFrom(t, resp)
	assert.NotEmpty(t, cookie.Value)

	body := readBody(t, resp)
	assert.Contains(t, body, "Conversational Neo4J Assistant")
	assert.Contains(t, body, "Enter your question")
	assert.NotContains(t, body, "Last Cypher Query")
}

func TestAskFormRendersTurnAndHistory(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	form := url.Values{"question": {"Which client's projects use most of our people?"}}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Time taken: 1.50s")
	assert.Contains(t, body, "Acme Logistics uses the most people.")
	assert.Contains(t, body, "Last Cypher Query")
	assert.Contains(t, body, "MATCH (c:CLIENT) RETURN c.name AS Client")
	assert.Contains(t, body, "Last Database Results")
	assert.Contains(t, body, "Which client&#39;s projects use most of our people?")
}

func TestAskFormIgnoresEmptyQuestion(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("question=+++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "Time taken")
}

func TestAskFormTurnInProgress(t *testing.T) {
	assistant := newFakeAssistant()
	assistant.askErr = core.ErrTurnInProgress
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("question=again"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "still being processed")
}

func TestAPIAskAndHistoryShareSession(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"first"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var turn pkg.Turn
	require.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &turn))
	assert.Equal(t, "first", turn.Question)
	assert.Equal(t, int64(1500), turn.ElapsedMs)

	cookie := sessionCookieFrom(t, resp)
	assert.Equal(t, cookie.Value, turn.SessionID)

	req = httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"second"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	_, err = s.app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(cookie)
	resp, err = s.app.Test(req)
	require.NoError(t, err)

	var history pkg.HistoryResponse
	require.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &history))
	assert.Equal(t, cookie.Value, history.SessionID)
	require.Len(t, history.Exchanges, 2)
	assert.Equal(t, "second", history.Exchanges[0].Question)
	assert.Equal(t, "first", history.Exchanges[1].Question)
}

func TestAPIAskErrors(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	tests := []struct {
		name   string
		body   string
		askErr error
		status int
	}{
		{name: "empty question", body: `{"question":"  "}`, status: fiber.StatusBadRequest},
		{name: "malformed body", body: `{"question":`, status: fiber.StatusBadRequest},
		{name: "turn in progress", body: `{"question":"q"}`, askErr: core.ErrTurnInProgress, status: fiber.StatusConflict},
		{name: "store failure", body: `{"question":"q"}`, askErr: errors.New("redis down"), status: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assistant.askErr = tt.askErr
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var errResp pkg.ErrorResponse
			require.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

func TestResetClearsHistory(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	cookie := sessionCookieFrom(t, resp)

	req = httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.AddCookie(cookie)
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	history, err := assistant.History(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, 0, history.Len())
}

func TestResetFailureRendersPage(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"still here"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	cookie := sessionCookieFrom(t, resp)

	assistant.resetErr = errors.New("redis down")
	req = httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.AddCookie(cookie)
	resp, err = s.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body := readBody(t, resp)
	assert.Contains(t, body, "The conversation could not be reset.")
	assert.Contains(t, body, "still here")
	assert.NotContains(t, body, "redis down")
}

func TestTranscript(t *testing.T) {
	assistant := newFakeAssistant()
	assistant.archive = conversation.NewTranscriptArchive(t.TempDir())
	s := newTestServer(t, assistant, nil)

	var cookie *http.Cookie
	for _, q := range []string{"first", "second"} {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"`+q+`"}`))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		cookie = sessionCookieFrom(t, resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transcript", nil)
	req.AddCookie(cookie)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var transcript pkg.TranscriptResponse
	require.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &transcript))
	assert.Equal(t, cookie.Value, transcript.SessionID)
	require.Len(t, transcript.Entries, 2)
	assert.Equal(t, "first", transcript.Entries[0].Question)
	assert.Equal(t, "MATCH (c:CLIENT) RETURN c.name AS Client", transcript.Entries[1].Query)
}

func TestTranscriptDisabled(t *testing.T) {
	s := newTestServer(t, newFakeAssistant(), nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/transcript", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var errResp pkg.ErrorResponse
	require.NoError(t, sonic.Unmarshal([]byte(readBody(t, resp)), &errResp))
	assert.Equal(t, conversation.ErrTranscriptsDisabled.Error(), errResp.Error)
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	assistant := newFakeAssistant()
	s := newTestServer(t, assistant, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "../../etc/passwd"})
	resp, err := s.app.Test(req)
	require.NoError(t, err)

	cookie := sessionCookieFrom(t, resp)
	assert.NotEqual(t, "../../etc/passwd", cookie.Value)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, newFakeAssistant(), func(ctx context.Context) error { return nil })
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	s = newTestServer(t, newFakeAssistant(), func(ctx context.Context) error { return errors.New("connection refused") })
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "connection refused")
}

func TestCombineHealth(t *testing.T) {
	ctx := context.Background()
	var calls []string
	check := func(name string, err error) HealthFunc {
		return func(ctx context.Context) error {
			calls = append(calls, name)
			return err
		}
	}

	assert.NoError(t, CombineHealth()(ctx))
	assert.NoError(t, CombineHealth(check("neo4j", nil), nil, check("redis", nil))(ctx))
	assert.Equal(t, []string{"neo4j", "redis"}, calls)

	calls = nil
	err := CombineHealth(check("neo4j", nil), check("redis", errors.New("redis: connection refused")), check("after", nil))(ctx)
	assert.EqualError(t, err, "redis: connection refused")
	assert.Equal(t, []string{"neo4j", "redis"}, calls)

	s := newTestServer(t, newFakeAssistant(), CombineHealth(check("neo4j", nil), check("redis", errors.New("redis: connection refused"))))
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "redis: connection refused")
}
