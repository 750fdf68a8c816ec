// Package web serves the chat page and a small JSON API over the orchestrator.
package web

import (
	"bytes"
	"context"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"cypher_chat/src/logger"
	"cypher_chat/src/model"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

//go:embed templates/index.html
var templatesFS embed.FS

const sessionCookie = "cypher_chat_session"

// Assistant answers questions for a session
type Assistant interface {
	Ask(ctx context.Context, sessionID, question string) (*pkg.Turn, error)
	History(ctx context.Context, sessionID string) (*conversation.History, error)
	Reset(ctx context.Context, sessionID string) error
	Transcript(ctx context.Context, sessionID string) ([]pkg.TranscriptEntry, error)
}

// HealthFunc reports whether the backing services are reachable
type HealthFunc func(ctx context.Context) error

// CombineHealth checks each function in order and returns the first failure.
// nil functions are skipped.
func CombineHealth(checks ...HealthFunc) HealthFunc {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// Server is the web front-end
type Server struct {
	config    model.ServerConfig
	assistant Assistant
	health    HealthFunc
	page      *template.Template
	app       *fiber.App
}

// NewServer builds the fiber app. health may be nil.
func NewServer(config model.ServerConfig, assistant Assistant, health HealthFunc) (*Server, error) {
	page, err := template.New("index.html").
		Funcs(template.FuncMap{"seconds": seconds}).
		ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		// a turn waits on two model calls and one database round trip
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})

	s := &Server{
		config:    config,
		assistant: assistant,
		health:    health,
		page:      page,
		app:       app,
	}

	app.Get("/", s.handleIndex)
	app.Post("/ask", s.handleAskForm)
	app.Post("/reset", s.handleReset)
	app.Get("/api/history", s.handleHistory)
	app.Get("/api/transcript", s.handleTranscript)
	app.Post("/api/ask", s.handleAsk)
	app.Get("/healthz", s.handleHealth)

	return s, nil
}

// Run starts the web server on the configured address.
func (s *Server) Run() error {
	logger.Info().Str("listen", s.config.ListenAddr).Msg("Starting web server")
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// sessionID returns the caller's session, issuing a new cookie when needed
func (s *Server) sessionID(c *fiber.Ctx) string {
	if id := c.Cookies(sessionCookie); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

type pageData struct {
	Title     string
	Turn      *pkg.Turn
	Exchanges []pkg.Exchange
	Notice    string
}

func (s *Server) render(c *fiber.Ctx, status int, data pageData) error {
	data.Title = s.config.Title

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		logger.Error().Err(err).Msg("Failed to render page")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
