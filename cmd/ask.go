package cmd

import (
	"cypher_chat/internal/terminal"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errTurnFailed = errors.New("the question could not be answered")

var askDetails bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := loadApplication(ctx, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		defer app.Close()

		orchestrator, err := app.newOrchestrator(ctx)
		if err != nil {
			return err
		}

		sessionID := uuid.NewString()
		chat := terminal.NewChat(orchestrator, sessionID, os.Stdin).WithDetails(askDetails)

		turn, err := orchestrator.Ask(ctx, sessionID, strings.Join(args, " "))
		if err != nil && turn == nil {
			return err
		}
		chat.PrintTurn(turn)
		if turn.Failed {
			return errTurnFailed
		}
		return err
	},
}

func init() {
	askCmd.Flags().BoolVar(&askDetails, "details", false, "Show the generated Cypher query and database results")
	rootCmd.AddCommand(askCmd)
}
