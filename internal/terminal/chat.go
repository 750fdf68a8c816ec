// Package terminal provides an interactive chat loop for the console.
package terminal

import (
	"bufio"
	"context"
	"cypher_chat/internal/core"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// Assistant answers questions for a session
type Assistant interface {
	Ask(ctx context.Context, sessionID, question string) (*pkg.Turn, error)
	History(ctx context.Context, sessionID string) (*conversation.History, error)
	Reset(ctx context.Context, sessionID string) error
}

// Chat reads questions line by line and prints each turn
type Chat struct {
	assistant   Assistant
	sessionID   string
	in          io.Reader
	showDetails bool
}

func NewChat(assistant Assistant, sessionID string, in io.Reader) *Chat {
	return &Chat{assistant: assistant, sessionID: sessionID, in: in, showDetails: true}
}

// WithDetails toggles printing of the generated query and database results
func (c *Chat) WithDetails(show bool) *Chat {
	c.showDetails = show
	return c
}

// Run loops until the input ends, /exit is entered or ctx is cancelled
func (c *Chat) Run(ctx context.Context) error {
	pterm.DefaultHeader.Println("Conversational Neo4J Assistant")
	pterm.Println(pterm.FgGray.Sprint("Commands: /history, /reset, /exit"))
	pterm.Println()

	scanner := bufio.NewScanner(c.in)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pterm.Print(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Enter your question: "))
		if !scanner.Scan() {
			pterm.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/history":
			if err := c.printHistory(ctx); err != nil {
				pterm.Error.Println(err)
			}
		case "/reset":
			if err := c.assistant.Reset(ctx, c.sessionID); err != nil {
				pterm.Error.Println(err)
				continue
			}
			pterm.Info.Println("Conversation cleared")
		default:
			if err := c.Ask(ctx, line); err != nil {
				pterm.Error.Println(err)
			}
		}
	}
}

// Ask processes one question behind a spinner and prints the turn
func (c *Chat) Ask(ctx context.Context, question string) error {
	spinner, _ := pterm.DefaultSpinner.Start("Processing your question...")
	turn, err := c.assistant.Ask(ctx, c.sessionID, question)
	if spinner != nil {
		_ = spinner.Stop()
	}

	switch {
	case errors.Is(err, core.ErrEmptyQuestion):
		return nil
	case turn == nil && err != nil:
		return err
	}

	c.PrintTurn(turn)
	// the answer is shown even when it could not be stored
	return err
}

// PrintTurn prints the elapsed time, the answer and optionally the query and results
func (c *Chat) PrintTurn(turn *pkg.Turn) {
	pterm.Printf("Time taken: %.2fs\n", turn.Elapsed.Seconds())

	titleStyle := pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	if turn.Failed {
		titleStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	}
	pterm.DefaultBox.
		WithTitle(titleStyle.Sprint("Answer")).
		WithPadding(1).
		Println(turn.Answer)

	if !c.showDetails {
		return
	}
	if turn.Query != "" {
		pterm.Println(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Last Cypher Query"))
		pterm.Println(turn.Query)
		pterm.Println()
	}
	if turn.ResultText != "" {
		pterm.Println(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Last Database Results"))
		pterm.Println(turn.ResultText)
		pterm.Println()
	}
}

func (c *Chat) printHistory(ctx context.Context) error {
	history, err := c.assistant.History(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	exchanges := history.Recent(0)
	if len(exchanges) == 0 {
		pterm.Info.Println("No questions yet")
		return nil
	}

	for _, ex := range exchanges {
		pterm.Println(pterm.Bold.Sprint("> Assistant: ") + ex.Answer)
		pterm.Println(pterm.Bold.Sprint("> User: ") + ex.Question)
		pterm.Println()
	}
	return nil
}
