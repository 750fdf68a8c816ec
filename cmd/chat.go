package cmd

import (
	"cypher_chat/internal/terminal"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	chatSession string
	chatDetails bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive session. Each line is a question; /history lists
previous exchanges, /reset clears them and /exit quits.`,
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

		if chatSession == "" {
			chatSession = uuid.NewString()
		}

		return terminal.NewChat(orchestrator, chatSession, os.Stdin).
			WithDetails(chatDetails).
			Run(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id to continue (a new one is generated when empty)")
	chatCmd.Flags().BoolVar(&chatDetails, "details", true, "Show the generated Cypher query and database results")
	rootCmd.AddCommand(chatCmd)
}
